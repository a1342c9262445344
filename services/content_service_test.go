package services_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sahilchouksey/mentor-hub-api/database"
	"github.com/sahilchouksey/mentor-hub-api/database/dbtest"
	"github.com/sahilchouksey/mentor-hub-api/model"
	"github.com/sahilchouksey/mentor-hub-api/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOnlyOneFeaturedQuote(t *testing.T) {
	dbtest.Each(t, func(t *testing.T, store database.Storage) {
		svc := newServices(t, store)
		ctx := context.Background()

		a, err := svc.Quotes.Create(ctx, []byte(`{"text":"A","author":"X","is_featured":true}`))
		require.NoError(t, err)
		b, err := svc.Quotes.Create(ctx, []byte(`{"text":"B","author":"Y","is_featured":true}`))
		require.NoError(t, err)

		got, err := svc.Quotes.Get(ctx, a.ID)
		require.NoError(t, err)
		assert.False(t, got.IsFeatured, "creating a featured quote unfeatures the old one")

		_, err = svc.Quotes.SetFeatured(ctx, a.ID)
		require.NoError(t, err)

		featured, err := svc.Quotes.Find(ctx, map[string]any{"is_featured": true}, false)
		require.NoError(t, err)
		require.Len(t, featured, 1)
		assert.Equal(t, a.ID, featured[0].ID)

		current, err := svc.Quotes.Featured(ctx)
		require.NoError(t, err)
		assert.Equal(t, a.ID, current.ID)

		_, err = svc.Quotes.Update(ctx, b.ID, []byte(`{"is_featured":true}`))
		require.NoError(t, err)
		current, err = svc.Quotes.Featured(ctx)
		require.NoError(t, err)
		assert.Equal(t, b.ID, current.ID)

		stats, err := svc.Quotes.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, stats["featured"])
	})
}

func TestFeaturedQuoteFallsBackToNewestActive(t *testing.T) {
	svc := newServices(t, dbtest.File(t))
	ctx := context.Background()

	_, err := svc.Quotes.Featured(ctx)
	assert.True(t, services.IsNotFound(err))

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	now := base
	svc.Quotes.SetClock(func() time.Time { return now })

	_, err = svc.Quotes.Create(ctx, []byte(`{"text":"old","author":"X"}`))
	require.NoError(t, err)
	now = base.Add(time.Hour)
	newest, err := svc.Quotes.Create(ctx, []byte(`{"text":"new","author":"Y"}`))
	require.NoError(t, err)

	got, err := svc.Quotes.Featured(ctx)
	require.NoError(t, err)
	assert.Equal(t, newest.ID, got.ID)

	// an inactive featured quote is not served
	_, err = svc.Quotes.SetFeatured(ctx, newest.ID)
	require.NoError(t, err)
	_, err = svc.Quotes.ToggleActive(ctx, newest.ID)
	require.NoError(t, err)
	got, err = svc.Quotes.Featured(ctx)
	require.NoError(t, err)
	assert.Equal(t, "old", got.Text)
}

func TestBookingSubmit(t *testing.T) {
	dbtest.Each(t, func(t *testing.T, store database.Storage) {
		svc := newServices(t, store)
		ctx := context.Background()

		internship, err := svc.Internships.Create(ctx, []byte(internshipJSON))
		require.NoError(t, err)

		booking, err := svc.Bookings.Submit(ctx, []byte(`{
			"name": "Neha",
			"email": "NEHA@example.com",
			"internship_id": "`+internship.ID+`",
			"status": "confirmed"
		}`))
		require.NoError(t, err)
		assert.Equal(t, model.BookingStatusPending, booking.Status, "public submissions always start pending")
		assert.Equal(t, "neha@example.com", booking.Email)
		assert.Equal(t, "Asha Rao", booking.MentorName)
		assert.Equal(t, "Studio", booking.ProgramTitle)

		_, err = svc.Internships.ToggleActive(ctx, internship.ID)
		require.NoError(t, err)
		_, err = svc.Bookings.Submit(ctx, []byte(`{"name":"Neha","email":"neha@example.com","internship_id":"`+internship.ID+`"}`))
		var verr *services.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "internship_id", verr.Fields[0].Field)

		_, err = svc.Bookings.Submit(ctx, []byte(`{"name":"Neha","email":"not-an-email"}`))
		require.ErrorAs(t, err, &verr)
	})
}

func TestBookingStatus(t *testing.T) {
	svc := newServices(t, dbtest.File(t))
	ctx := context.Background()

	booking, err := svc.Bookings.Submit(ctx, []byte(`{"name":"Neha","email":"neha@example.com"}`))
	require.NoError(t, err)

	updated, err := svc.Bookings.UpdateStatus(ctx, booking.ID, " Confirmed ")
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusConfirmed, updated.Status)

	_, err = svc.Bookings.UpdateStatus(ctx, booking.ID, "archived")
	var verr *services.ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = svc.Bookings.UpdateStatus(ctx, "book_missing", "confirmed")
	assert.True(t, services.IsNotFound(err))

	stats, err := svc.Bookings.Stats(ctx)
	require.NoError(t, err)
	byStatus := stats["by_status"].(map[string]int)
	assert.Equal(t, 1, byStatus["confirmed"])
	assert.Equal(t, 0, byStatus["pending"])
	assert.Contains(t, byStatus, "cancelled")
}

type recordingSender struct {
	mu   sync.Mutex
	sent []services.Message
	fail map[string]bool
}

func (s *recordingSender) Send(ctx context.Context, msg services.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail[msg.To] {
		return errors.New("mailbox unavailable")
	}
	s.sent = append(s.sent, msg)
	return nil
}

func TestParseSendRequest(t *testing.T) {
	req, err := services.ParseSendRequest([]byte(`{"recipients":[
		{"name":" Neha ","email":" NEHA@Example.com "},
		{"name":"","email":""},
		{"name":"Ravi","email":"ravi@example.com"}
	]}`))
	require.NoError(t, err)
	require.Len(t, req.Recipients, 2, "blank rows are dropped")
	assert.Equal(t, "Neha", req.Recipients[0].Name)
	assert.Equal(t, "neha@example.com", req.Recipients[0].Email)

	_, err = services.ParseSendRequest([]byte(`{"recipients":[{"name":"","email":""}]}`))
	var verr *services.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "recipients", verr.Fields[0].Field)

	_, err = services.ParseSendRequest([]byte(`{"recipients":[{"name":"A","email":"a@example.com"},{"name":"B","email":"nope"}]}`))
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "recipients.1.email", verr.Fields[0].Field)
}

func TestNotificationSend(t *testing.T) {
	dbtest.Each(t, func(t *testing.T, store database.Storage) {
		sender := &recordingSender{fail: map[string]bool{"bounce@example.com": true}}
		notifications := services.NewNotificationService(
			database.MustRepository[model.NotificationTemplate](store, database.NotificationTemplates),
			database.MustRepository[model.NotificationLog](store, database.NotificationLogs),
			sender,
			1000,
		)
		ctx := context.Background()

		tmpl, err := notifications.Create(ctx, []byte(`{
			"name": "Welcome",
			"subject": "Hi {{name}}",
			"body": "Welcome aboard, {{name}} ({{email}})"
		}`))
		require.NoError(t, err)
		assert.Equal(t, model.NotificationChannelEmail, tmpl.Channel)

		req, err := services.ParseSendRequest([]byte(`{"recipients":[
			{"name":"Neha","email":"neha@example.com"},
			{"name":"Bounce","email":"bounce@example.com"}
		]}`))
		require.NoError(t, err)

		entry, err := notifications.Send(ctx, tmpl.ID, req)
		require.NoError(t, err)
		assert.Equal(t, 1, entry.SentCount)
		assert.Equal(t, 1, entry.FailedCount)
		require.Len(t, entry.Recipients, 2)
		assert.Equal(t, services.RecipientSent, entry.Recipients[0].Status)
		assert.Equal(t, services.RecipientFailed, entry.Recipients[1].Status)
		assert.Equal(t, "mailbox unavailable", entry.Recipients[1].Error)

		require.Len(t, sender.sent, 1)
		assert.Equal(t, "Hi Neha", sender.sent[0].Subject)
		assert.Equal(t, "Welcome aboard, Neha (neha@example.com)", sender.sent[0].Body)

		logs, err := notifications.Logs.List(ctx, false)
		require.NoError(t, err)
		require.Len(t, logs, 1)
		assert.Equal(t, tmpl.ID, logs[0].TemplateID)

		_, err = notifications.ToggleActive(ctx, tmpl.ID)
		require.NoError(t, err)
		_, err = notifications.Send(ctx, tmpl.ID, req)
		var verr *services.ValidationError
		assert.ErrorAs(t, err, &verr, "inactive templates cannot be sent")

		_, err = notifications.Send(ctx, "tmpl_missing", req)
		assert.True(t, services.IsNotFound(err))
	})
}

// cancelAfterFirst cancels the broadcast context once the first message is out.
type cancelAfterFirst struct {
	recordingSender
	cancel context.CancelFunc
}

func (s *cancelAfterFirst) Send(ctx context.Context, msg services.Message) error {
	err := s.recordingSender.Send(ctx, msg)
	s.cancel()
	return err
}

func TestNotificationSendInterruptedStillLogs(t *testing.T) {
	dbtest.Each(t, func(t *testing.T, store database.Storage) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		sender := &cancelAfterFirst{cancel: cancel}
		notifications := services.NewNotificationService(
			database.MustRepository[model.NotificationTemplate](store, database.NotificationTemplates),
			database.MustRepository[model.NotificationLog](store, database.NotificationLogs),
			sender,
			1000,
		)

		tmpl, err := notifications.Create(context.Background(), []byte(`{"name": "Welcome", "subject": "Hi", "body": "Hello {{name}}"}`))
		require.NoError(t, err)
		req, err := services.ParseSendRequest([]byte(`{"recipients":[
			{"name":"Neha","email":"neha@example.com"},
			{"name":"Ravi","email":"ravi@example.com"},
			{"name":"Mira","email":"mira@example.com"}
		]}`))
		require.NoError(t, err)

		entry, err := notifications.Send(ctx, tmpl.ID, req)
		assert.ErrorIs(t, err, context.Canceled)
		require.NotNil(t, entry)
		assert.Equal(t, 1, entry.SentCount)
		assert.Equal(t, 2, entry.FailedCount)
		require.Len(t, entry.Recipients, 3)
		assert.Equal(t, services.RecipientSent, entry.Recipients[0].Status)
		assert.Equal(t, services.RecipientFailed, entry.Recipients[2].Status)
		assert.Contains(t, entry.Recipients[2].Error, "not sent")
		assert.Len(t, sender.sent, 1)

		logs, err := notifications.Logs.List(context.Background(), false)
		require.NoError(t, err)
		require.Len(t, logs, 1, "the partial broadcast is recorded")
		assert.Equal(t, 1, logs[0].SentCount)
	})
}

func TestAuditRecord(t *testing.T) {
	svc := newServices(t, dbtest.File(t))
	ctx := context.Background()

	require.NoError(t, svc.Audit.Record(ctx, &model.AdminAuditLog{
		AdminID:    "usr_1",
		AdminName:  "admin",
		Action:     "delete",
		Resource:   "internships",
		ResourceID: "int_1",
		Status:     200,
	}))

	logs, err := svc.Audit.Search(ctx, "internships", services.ScopeAdmin)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "delete", logs[0].Action)
}

func TestUploadAudio(t *testing.T) {
	dir := t.TempDir()
	uploads := services.NewUploadService(services.NewLocalMediaStore(dir, "/uploads"))
	ctx := context.Background()

	result, err := uploads.UploadAudio(ctx, "Morning Talk.MP3", 5, strings.NewReader("audio"))
	require.NoError(t, err)
	assert.Equal(t, "audio/mpeg", result.ContentType)
	assert.True(t, strings.HasPrefix(result.URL, "/uploads/audio/"))
	assert.True(t, strings.HasSuffix(result.Key, "_Morning-Talk.mp3"))

	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(result.Key)))
	require.NoError(t, err)
	assert.Equal(t, "audio", string(data))

	var verr *services.ValidationError
	_, err = uploads.UploadAudio(ctx, "notes.pdf", 5, strings.NewReader("pdf"))
	assert.ErrorAs(t, err, &verr)
	_, err = uploads.UploadAudio(ctx, "empty.mp3", 0, strings.NewReader(""))
	assert.ErrorAs(t, err, &verr)
	_, err = uploads.UploadAudio(ctx, "huge.mp3", services.MaxAudioUploadSize+1, strings.NewReader("x"))
	assert.ErrorAs(t, err, &verr)
}
