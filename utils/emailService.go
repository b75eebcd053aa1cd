package utils

import (
	"fmt"
	"net/smtp"

	"palletrack/config"
)

// SendCriticalDiscrepancyEmail notifies the configured recipient that a
// reconciliation batch produced CRITICAL lines.
func SendCriticalDiscrepancyEmail(palletID uint, batchID string, criticalCount int) error {
	recipient := config.AppConfig.AlertRecipient
	if recipient == "" {
		return nil
	}

	smtpHost := "smtp.gmail.com"
	smtpPort := "587"

	from := config.AppConfig.EmailSender
	password := config.AppConfig.Password

	to := []string{recipient}

	subject := "Subject: Critical Pallet Discrepancy Detected\nMIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n\n"

	body := fmt.Sprintf(`
		<html>
			<body style="font-family: Arial, sans-serif; background-color: #f4f4f4; padding: 20px;">
				<div style="max-width: 500px; margin: auto; background-color: #ffffff; border-radius: 8px; padding: 30px;">
					<h2 style="color: #c0392b; text-align: center;">Critical Discrepancy</h2>
					<p style="font-size: 16px; color: #555555;">Reconciliation of pallet <b>#%d</b> flagged <b>%d</b> critical line(s).</p>
					<p style="font-size: 14px; color: #666666;">Batch: %s</p>
					<p style="font-size: 14px; color: #666666;">Every flagged line must carry a reason before the pallet can be closed out.</p>
				</div>
			</body>
		</html>
	`, palletID, criticalCount, batchID)

	message := []byte(subject + "\n" + body)
	auth := smtp.PlainAuth("", from, password, smtpHost)

	err := smtp.SendMail(smtpHost+":"+smtpPort, auth, from, to, message)
	if err != nil {
		fmt.Println("Error sending discrepancy email:", err)
		return err
	}

	return nil
}

// SendStaleTransitEmail warns that a manifest has been in transit longer
// than the configured window.
func SendStaleTransitEmail(manifestCode string, hours float64) error {
	recipient := config.AppConfig.AlertRecipient
	if recipient == "" {
		return nil
	}

	smtpHost := "smtp.gmail.com"
	smtpPort := "587"

	from := config.AppConfig.EmailSender
	password := config.AppConfig.Password

	to := []string{recipient}

	subject := "Subject: Manifest Overdue In Transit\nMIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n\n"

	body := fmt.Sprintf(`
		<html>
			<body style="font-family: Arial, sans-serif; background-color: #f4f4f4; padding: 20px;">
				<div style="max-width: 500px; margin: auto; background-color: #ffffff; border-radius: 8px; padding: 30px;">
					<h2 style="color: #e67e22; text-align: center;">Manifest Overdue</h2>
					<p style="font-size: 16px; color: #555555;">Manifest <b>%s</b> has been in transit for <b>%.0f hours</b>.</p>
					<p style="font-size: 14px; color: #666666;">Check with the carrier and mark it delivered or investigate.</p>
				</div>
			</body>
		</html>
	`, manifestCode, hours)

	message := []byte(subject + "\n" + body)
	auth := smtp.PlainAuth("", from, password, smtpHost)

	err := smtp.SendMail(smtpHost+":"+smtpPort, auth, from, to, message)
	if err != nil {
		fmt.Println("Error sending stale transit email:", err)
		return err
	}

	return nil
}
