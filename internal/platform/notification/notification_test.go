package notification

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReminderEmail(t *testing.T) {
	msg, err := ReminderEmail("pat@example.com", ReminderData{
		MedicationName: "Lisinopril",
		Dosage:         "10mg",
		Time:           "08:00",
		Notes:          "<b>with water</b>",
	})
	require.NoError(t, err)

	assert.Equal(t, "pat@example.com", msg.To)
	assert.Equal(t, "Medication Reminder - Lisinopril", msg.Subject)
	assert.Contains(t, msg.HTML, "Lisinopril")
	assert.Contains(t, msg.HTML, "&lt;b&gt;with water&lt;/b&gt;", "notes must be escaped in HTML")
	assert.Contains(t, msg.Text, "Dosage: 10mg")
	assert.Contains(t, msg.Text, "Scheduled Time: 08:00")
}

func TestReminderEmail_OmitsEmptyFields(t *testing.T) {
	msg, err := ReminderEmail("pat@example.com", ReminderData{MedicationName: "Amlodipine", Time: "21:30"})
	require.NoError(t, err)
	assert.NotContains(t, msg.Text, "Dosage:")
	assert.NotContains(t, msg.Text, "Notes:")
}

func TestReminderSMS(t *testing.T) {
	body, err := ReminderSMS(ReminderData{MedicationName: "Losartan", Dosage: "50mg", Time: "07:15"})
	require.NoError(t, err)
	assert.Equal(t, "Reminder: take Losartan (50mg) at 07:15.", body)
}

func TestDoctorAccessEmail(t *testing.T) {
	msg, err := DoctorAccessEmail("doc@clinic.test", DoctorAccessData{
		DoctorName:  "Smith",
		PatientName: "Ana",
		AccessLevel: "basic",
		ValidUntil:  time.Date(2026, time.November, 14, 0, 0, 0, 0, time.UTC),
		AccessURL:   "http://app.test/doctor-access?token=abc&user_id=1",
	})
	require.NoError(t, err)

	assert.Equal(t, "Health Data Access Request from Ana", msg.Subject)
	assert.Contains(t, msg.HTML, "Hello Dr. Smith")
	assert.Contains(t, msg.HTML, "November 14, 2026")
	assert.Contains(t, msg.HTML, "token=abc&amp;user_id=1")
	assert.Contains(t, msg.Text, "http://app.test/doctor-access?token=abc&user_id=1")
}

type fakeSES struct {
	in  *ses.SendEmailInput
	err error
}

func (f *fakeSES) SendEmail(_ context.Context, in *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.in = in
	return &ses.SendEmailOutput{}, f.err
}

func TestSESSender(t *testing.T) {
	fake := &fakeSES{}
	s := NewSESSenderWithClient(fake, "noreply@bptrack.test")

	err := s.SendEmail(context.Background(), EmailMessage{To: "a@b.test", Subject: "Hi", HTML: "<p>x</p>", Text: "x"})
	require.NoError(t, err)

	require.NotNil(t, fake.in)
	assert.Equal(t, "noreply@bptrack.test", aws.ToString(fake.in.Source))
	assert.Equal(t, []string{"a@b.test"}, fake.in.Destination.ToAddresses)
	assert.Equal(t, "Hi", aws.ToString(fake.in.Message.Subject.Data))
	assert.Equal(t, "<p>x</p>", aws.ToString(fake.in.Message.Body.Html.Data))
	assert.Equal(t, "x", aws.ToString(fake.in.Message.Body.Text.Data))

	fake.err = errors.New("throttled")
	err = s.SendEmail(context.Background(), EmailMessage{To: "a@b.test"})
	assert.ErrorContains(t, err, "throttled")
}

type fakeSNS struct {
	in *sns.PublishInput
}

func (f *fakeSNS) Publish(_ context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.in = in
	return &sns.PublishOutput{}, nil
}

func TestSNSSender(t *testing.T) {
	fake := &fakeSNS{}
	require.NoError(t, NewSNSSenderWithClient(fake).SendSMS(context.Background(), "+15551234567", "take meds"))

	assert.Equal(t, "+15551234567", aws.ToString(fake.in.PhoneNumber))
	assert.Equal(t, "take meds", aws.ToString(fake.in.Message))
	assert.Equal(t, "Transactional", aws.ToString(fake.in.MessageAttributes["AWS.SNS.SMS.SMSType"].StringValue))
}

func TestLogSender(t *testing.T) {
	var buf strings.Builder
	l := LogSender{Logger: zerolog.New(&buf)}

	require.NoError(t, l.SendEmail(context.Background(), EmailMessage{To: "a@b.test", Subject: "Hello"}))
	require.NoError(t, l.SendSMS(context.Background(), "+1555", "body"))

	assert.Contains(t, buf.String(), `"subject":"Hello"`)
	assert.Contains(t, buf.String(), `"to":"+1555"`)
}

func TestMockSenders(t *testing.T) {
	email := &MockEmailSender{ShouldFail: true, FailError: "smtp down"}
	err := email.SendEmail(context.Background(), EmailMessage{To: "x@y.test"})
	assert.EqualError(t, err, "smtp down")
	assert.Len(t, email.Calls(), 1)

	sms := &MockSMSSender{}
	require.NoError(t, sms.SendSMS(context.Background(), "+1", "hi"))
	assert.Equal(t, []SMSCall{{To: "+1", Body: "hi"}}, sms.Calls())
}
