package service

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/realty-promo/internal/constants"
	"github.com/realty-promo/internal/models"
)

const propertyTitleFallback = "your property"

// notificationContent 一条通知的站内与邮件内容
type notificationContent struct {
	Type         string
	Title        string
	Message      string
	Link         string
	EmailSubject string
	EmailHTML    string
}

type emailDetail struct {
	Label string
	Value string
}

type emailView struct {
	Heading     string
	Urgent      bool
	Intro       string
	Details     []emailDetail
	ActionURL   string
	ActionLabel string
}

var notificationEmailTemplate = template.Must(template.New("notification").Parse(`<!DOCTYPE html>
<html>
<body style="font-family:Arial,Helvetica,sans-serif;color:#222;">
  <h2 style="color:{{if .Urgent}}#c0392b{{else}}#2c3e50{{end}};">{{.Heading}}</h2>
  <p>{{.Intro}}</p>
  {{- if .Details}}
  <table cellpadding="6" style="border-collapse:collapse;">
    {{- range .Details}}
    <tr><td style="color:#777;">{{.Label}}</td><td><strong>{{.Value}}</strong></td></tr>
    {{- end}}
  </table>
  {{- end}}
  {{- if .ActionURL}}
  <p><a href="{{.ActionURL}}" style="background:#2c3e50;color:#fff;padding:10px 16px;text-decoration:none;border-radius:4px;">{{.ActionLabel}}</a></p>
  {{- end}}
</body>
</html>`))

func renderNotificationEmail(view emailView) string {
	var buf bytes.Buffer
	if err := notificationEmailTemplate.Execute(&buf, view); err != nil {
		return "<p>" + template.HTMLEscapeString(view.Intro) + "</p>"
	}
	return buf.String()
}

// ExpiringDedupKey 到期提醒去重键：同一推广同一自然日仅一条
func ExpiringDedupKey(promotionID string, now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return fmt.Sprintf("%s:%s:%s", constants.NotificationTypePromotionExpiring, promotionID, now.In(loc).Format("2006-01-02"))
}

// dayBounds 返回 now 所在自然日（按 loc）的起止时间
func dayBounds(now time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// DaysRemaining 剩余天数，按 24 小时向上取整
func DaysRemaining(endDate, now time.Time) int {
	diff := endDate.Sub(now)
	if diff <= 0 {
		return 0
	}
	days := int(diff / (24 * time.Hour))
	if diff%(24*time.Hour) != 0 {
		days++
	}
	return days
}

func promotionTypeLabel(promotionType string) string {
	switch promotionType {
	case constants.PromotionTypeFeatured:
		return "Featured"
	case constants.PromotionTypeVideoAd:
		return "Video ad"
	case constants.PromotionTypeBanner:
		return "Banner"
	case constants.PromotionTypeHomepage:
		return "Homepage"
	default:
		return promotionType
	}
}

func resolvePropertyTitle(property *models.Property) string {
	if property == nil {
		return propertyTitleFallback
	}
	title := strings.TrimSpace(property.Title)
	if title == "" {
		return propertyTitleFallback
	}
	return title
}

func buildLink(baseURL, path string) string {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	return base + path
}

func formatDate(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format("Jan 2, 2006 15:04 MST")
}

func buildExpiringContent(p *models.Promotion, propertyTitle string, daysRemaining int, loc *time.Location, baseURL string) notificationContent {
	label := promotionTypeLabel(p.PromotionType)
	endText := formatDate(p.EndDate, loc)
	link := buildLink(baseURL, "/dashboard/promotions/"+p.ID)
	urgent := daysRemaining <= constants.PromotionUrgentDaysRemaining

	var title, message, subject, intro string
	if urgent {
		title = "Urgent: your promotion expires within 24 hours"
		message = fmt.Sprintf("Your %s promotion for \"%s\" (ID: %s) expires on %s. Renew now to keep your listing visible.",
			label, propertyTitle, p.ID, endText)
		subject = fmt.Sprintf("Urgent: %s promotion for %s ends tomorrow", label, propertyTitle)
		intro = fmt.Sprintf("Your %s promotion for \"%s\" ends in less than a day. Once it expires the listing leaves its promoted placement.", label, propertyTitle)
	} else {
		title = "Your promotion is ending soon"
		message = fmt.Sprintf("Your %s promotion for \"%s\" (ID: %s) ends in %d days on %s.",
			label, propertyTitle, p.ID, daysRemaining, endText)
		subject = fmt.Sprintf("Reminder: %s promotion for %s ends in %d days", label, propertyTitle, daysRemaining)
		intro = fmt.Sprintf("This is a reminder that your %s promotion for \"%s\" ends in %d days.", label, propertyTitle, daysRemaining)
	}

	return notificationContent{
		Type:         constants.NotificationTypePromotionExpiring,
		Title:        title,
		Message:      message,
		Link:         link,
		EmailSubject: subject,
		EmailHTML: renderNotificationEmail(emailView{
			Heading: title,
			Urgent:  urgent,
			Intro:   intro,
			Details: []emailDetail{
				{Label: "Promotion", Value: label},
				{Label: "Property", Value: propertyTitle},
				{Label: "Ends", Value: endText},
				{Label: "Days remaining", Value: fmt.Sprintf("%d", daysRemaining)},
			},
			ActionURL:   link,
			ActionLabel: "Renew promotion",
		}),
	}
}

func buildRenewedContent(p *models.Promotion, propertyTitle string, newEnd time.Time, loc *time.Location, baseURL string) notificationContent {
	label := promotionTypeLabel(p.PromotionType)
	endText := formatDate(newEnd, loc)
	link := buildLink(baseURL, "/dashboard/promotions/"+p.ID)
	title := "Your promotion has been renewed"
	message := fmt.Sprintf("Your %s promotion for \"%s\" (ID: %s) was renewed automatically and now runs until %s.",
		label, propertyTitle, p.ID, endText)
	return notificationContent{
		Type:         constants.NotificationTypePromotionRenewed,
		Title:        title,
		Message:      message,
		Link:         link,
		EmailSubject: fmt.Sprintf("%s promotion for %s renewed", label, propertyTitle),
		EmailHTML: renderNotificationEmail(emailView{
			Heading: title,
			Intro:   message,
			Details: []emailDetail{
				{Label: "Property", Value: propertyTitle},
				{Label: "New end date", Value: endText},
			},
			ActionURL:   link,
			ActionLabel: "View promotion",
		}),
	}
}

func buildExpiredContent(p *models.Promotion, propertyTitle string, loc *time.Location, baseURL string) notificationContent {
	label := promotionTypeLabel(p.PromotionType)
	link := buildLink(baseURL, "/dashboard/promotions/"+p.ID)
	title := "Your promotion has ended"
	message := fmt.Sprintf("Your %s promotion for \"%s\" (ID: %s) ended on %s and is no longer active.",
		label, propertyTitle, p.ID, formatDate(p.EndDate, loc))
	return notificationContent{
		Type:         constants.NotificationTypePromotionExpired,
		Title:        title,
		Message:      message,
		Link:         link,
		EmailSubject: fmt.Sprintf("%s promotion for %s has ended", label, propertyTitle),
		EmailHTML: renderNotificationEmail(emailView{
			Heading:     title,
			Intro:       message,
			ActionURL:   link,
			ActionLabel: "Promote again",
		}),
	}
}

func buildActivatedContent(p *models.Promotion, propertyTitle string, loc *time.Location, baseURL string) notificationContent {
	label := promotionTypeLabel(p.PromotionType)
	link := buildLink(baseURL, "/dashboard/promotions/"+p.ID)
	title := "Your promotion is live"
	message := fmt.Sprintf("Your %s promotion for \"%s\" (ID: %s) is active until %s.",
		label, propertyTitle, p.ID, formatDate(p.EndDate, loc))
	return notificationContent{
		Type:         constants.NotificationTypePromotionActivated,
		Title:        title,
		Message:      message,
		Link:         link,
		EmailSubject: fmt.Sprintf("%s promotion for %s is live", label, propertyTitle),
		EmailHTML: renderNotificationEmail(emailView{
			Heading: title,
			Intro:   message,
			Details: []emailDetail{
				{Label: "Duration", Value: fmt.Sprintf("%d days", p.DurationDays)},
				{Label: "Amount paid", Value: p.AmountPaid.String()},
			},
			ActionURL:   link,
			ActionLabel: "View promotion",
		}),
	}
}

func buildCommissionDueContent(tx *models.Transaction, propertyTitle string, baseURL string) notificationContent {
	link := buildLink(baseURL, "/dashboard/transactions/"+tx.ID)
	title := "Commission due"
	message := fmt.Sprintf("A commission of %s is due for the %s transaction on \"%s\" (ID: %s).",
		tx.CommissionAmount.String(), strings.ReplaceAll(tx.TransactionType, "_", " "), propertyTitle, tx.ID)
	return notificationContent{
		Type:         constants.NotificationTypeCommissionDue,
		Title:        title,
		Message:      message,
		Link:         link,
		EmailSubject: fmt.Sprintf("Commission due for %s", propertyTitle),
		EmailHTML: renderNotificationEmail(emailView{
			Heading: title,
			Intro:   message,
			Details: []emailDetail{
				{Label: "Transaction amount", Value: tx.TransactionAmount.String()},
				{Label: "Commission", Value: tx.CommissionAmount.String()},
			},
			ActionURL:   link,
			ActionLabel: "View transaction",
		}),
	}
}
