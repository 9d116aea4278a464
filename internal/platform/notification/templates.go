package notification

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"io"
	"strings"
	texttemplate "text/template"
	"time"
)

// ReminderData fills the medication reminder templates.
type ReminderData struct {
	PatientName    string
	MedicationName string
	Dosage         string
	Time           string
	Notes          string
}

// DoctorAccessData fills the doctor access email.
type DoctorAccessData struct {
	DoctorName  string
	PatientName string
	AccessLevel string
	ValidUntil  time.Time
	AccessURL   string
}

const dateLayout = "January 2, 2006"

var funcs = map[string]any{
	"date": func(t time.Time) string { return t.Format(dateLayout) },
}

var (
	reminderHTML = htmltemplate.Must(htmltemplate.New("reminder.html").Funcs(funcs).Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #2563eb;">Medication Reminder</h2>
  <div style="background: #f0f9ff; padding: 20px; border-radius: 8px; margin: 20px 0;">
    <h3 style="margin-top: 0; color: #1e40af;">Time to take your medication!</h3>
    <p><strong>Medication:</strong> {{.MedicationName}}</p>
    {{if .Dosage}}<p><strong>Dosage:</strong> {{.Dosage}}</p>{{end}}
    <p><strong>Scheduled Time:</strong> {{.Time}}</p>
    {{if .Notes}}<p><strong>Notes:</strong> {{.Notes}}</p>{{end}}
  </div>
  <div style="background: #fef3c7; padding: 15px; border-radius: 6px; margin: 15px 0; color: #92400e;">
    <ul style="margin: 0; padding-left: 20px;">
      <li>Take with food if recommended by your doctor</li>
      <li>Don't skip doses to maintain consistent blood pressure control</li>
      <li>Contact your doctor if you experience side effects</li>
    </ul>
  </div>
  <p style="margin-top: 20px; color: #6b7280; font-size: 14px;">
    This is an automated reminder from your hypertension management app.
    If you've already taken this medication, you can ignore this message.
  </p>
</div>`))

	reminderText = texttemplate.Must(texttemplate.New("reminder.txt").Funcs(funcs).Parse(`Medication Reminder

Time to take your medication!

Medication: {{.MedicationName}}
{{if .Dosage}}Dosage: {{.Dosage}}
{{end}}Scheduled Time: {{.Time}}
{{if .Notes}}Notes: {{.Notes}}
{{end}}
Important: Don't skip doses to maintain consistent blood pressure control.
`))

	reminderSMS = texttemplate.Must(texttemplate.New("reminder.sms").Parse(
		`Reminder: take {{.MedicationName}}{{if .Dosage}} ({{.Dosage}}){{end}} at {{.Time}}.`))

	doctorHTML = htmltemplate.Must(htmltemplate.New("doctor.html").Funcs(funcs).Parse(`<h2>Health Data Access Granted</h2>
<p>Hello Dr. {{.DoctorName}},</p>
<p>{{.PatientName}} has granted you access to their hypertension management data.</p>
<div style="background: #f5f5f5; padding: 20px; border-radius: 8px; margin: 20px 0;">
  <h3>Access Details:</h3>
  <p><strong>Patient:</strong> {{.PatientName}}</p>
  <p><strong>Access Level:</strong> {{.AccessLevel}}</p>
  <p><strong>Valid Until:</strong> {{date .ValidUntil}}</p>
</div>
<p>Click the button below to access their health dashboard:</p>
<a href="{{.AccessURL}}" style="background: #007bff; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px; display: inline-block; margin: 10px 0;">View Patient Data</a>
<p style="margin-top: 20px; font-size: 14px; color: #666;">
  This link will expire on {{date .ValidUntil}}. If you need continued access, please contact your patient.
</p>
<hr style="margin: 20px 0;">
<p style="font-size: 12px; color: #999;">
  This email contains confidential patient health information. Please handle it according to medical privacy guidelines.
</p>`))

	doctorText = texttemplate.Must(texttemplate.New("doctor.txt").Funcs(funcs).Parse(`Hello Dr. {{.DoctorName}},

{{.PatientName}} has granted you {{.AccessLevel}} access to their hypertension management data until {{date .ValidUntil}}.

View patient data: {{.AccessURL}}
`))
)

// ReminderEmail renders the medication reminder email for to.
func ReminderEmail(to string, d ReminderData) (EmailMessage, error) {
	html, err := execute(reminderHTML, d)
	if err != nil {
		return EmailMessage{}, err
	}
	text, err := execute(reminderText, d)
	if err != nil {
		return EmailMessage{}, err
	}
	return EmailMessage{
		To:      to,
		Subject: "Medication Reminder - " + d.MedicationName,
		HTML:    html,
		Text:    text,
	}, nil
}

// ReminderSMS renders the one-line SMS reminder.
func ReminderSMS(d ReminderData) (string, error) {
	return execute(reminderSMS, d)
}

// DoctorAccessEmail renders the email sent to a doctor when access is granted.
func DoctorAccessEmail(to string, d DoctorAccessData) (EmailMessage, error) {
	html, err := execute(doctorHTML, d)
	if err != nil {
		return EmailMessage{}, err
	}
	text, err := execute(doctorText, d)
	if err != nil {
		return EmailMessage{}, err
	}
	return EmailMessage{
		To:      to,
		Subject: "Health Data Access Request from " + d.PatientName,
		HTML:    html,
		Text:    text,
	}, nil
}

type renderer interface {
	Name() string
	Execute(w io.Writer, data any) error
}

func execute(t renderer, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", t.Name(), err)
	}
	return strings.TrimSpace(buf.String()), nil
}
