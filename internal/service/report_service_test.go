package service

import (
	"context"
	"testing"

	"adminhub/internal/models"
	"adminhub/internal/notifications"
	"adminhub/internal/repository"
	"adminhub/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) reportService() *ReportService {
	return NewReportService(f.reports, f.events, f.comments, f.users, f.userService(), f.audit, f.feed)
}

func TestReportService_CreateCapturesSnapshot(t *testing.T) {
	f := newFixture(t)
	svc := f.reportService()
	ctx := context.Background()

	owner := testutil.CreateUser(t, f.db, "owner", false)
	reporter := testutil.CreateUser(t, f.db, "reporter", false)
	event := testutil.CreateEvent(t, f.db, owner.ID, "Suspicious post", models.EventStatusApproved)

	report, err := svc.Create(ctx, ReportInput{
		ReporterID: reporter.ID,
		TargetType: "post",
		TargetID:   event.ID,
		Reason:     "spam",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ReportTargetPost, report.TargetType)
	assert.Equal(t, models.ReportStatusOpen, report.Status)
	require.NotNil(t, report.ReportedUserID)
	assert.Equal(t, owner.ID, *report.ReportedUserID)
	assert.Equal(t, "Suspicious post", report.Snapshot.Title)
	assert.Equal(t, "owner", report.Snapshot.Author)

	comment := &models.Comment{PostID: event.ID, UserID: owner.ID, Content: "rude words"}
	require.NoError(t, f.comments.Create(ctx, comment))
	report, err = svc.Create(ctx, ReportInput{ReporterID: reporter.ID, TargetType: "COMMENT", TargetID: comment.ID, Reason: "abuse"})
	require.NoError(t, err)
	assert.Equal(t, "rude words", report.Snapshot.Body)

	assert.Equal(t, []string{notifications.EventReportCreated, notifications.EventReportCreated}, f.feed.types())
}

func TestReportService_CreateRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	svc := f.reportService()
	ctx := context.Background()
	reporter := testutil.CreateUser(t, f.db, "reporter", false)

	_, err := svc.Create(ctx, ReportInput{ReporterID: reporter.ID, TargetType: "PLANET", TargetID: 1, Reason: "x"})
	assertAppCode(t, err, models.CodeValidation)

	_, err = svc.Create(ctx, ReportInput{ReporterID: reporter.ID, TargetType: "POST", TargetID: 404, Reason: "x"})
	assertAppCode(t, err, models.CodeNotFound)

	_, err = svc.Create(ctx, ReportInput{ReporterID: reporter.ID, TargetType: "USER", TargetID: reporter.ID, Reason: "x"})
	assertAppCode(t, err, models.CodeValidation)
}

func TestReportService_ResolveDeleteContent(t *testing.T) {
	f := newFixture(t)
	svc := f.reportService()
	ctx := context.Background()

	owner := testutil.CreateUser(t, f.db, "owner", false)
	event := testutil.CreateEvent(t, f.db, owner.ID, "bad", models.EventStatusApproved)
	report, err := svc.Create(ctx, ReportInput{ReporterID: owner.ID, TargetType: "POST", TargetID: event.ID, Reason: "spam"})
	require.NoError(t, err)

	resolved, err := svc.Resolve(ctx, f.actor, report.ID, ResolveReportInput{Note: "removed", Action: "delete_content"})
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusResolved, resolved.Status)
	assert.Equal(t, models.ReportActionDeleteContent, resolved.ActionTaken)

	_, err = f.events.GetByID(ctx, event.ID)
	assertAppCode(t, err, models.CodeNotFound)

	_, err = svc.Resolve(ctx, f.actor, report.ID, ResolveReportInput{})
	assertAppCode(t, err, models.CodeConflict)
}

func TestReportService_ResolveDeletedTargetStillResolves(t *testing.T) {
	f := newFixture(t)
	svc := f.reportService()
	ctx := context.Background()

	owner := testutil.CreateUser(t, f.db, "owner", false)
	event := testutil.CreateEvent(t, f.db, owner.ID, "bad", models.EventStatusApproved)
	report, err := svc.Create(ctx, ReportInput{ReporterID: owner.ID, TargetType: "POST", TargetID: event.ID, Reason: "spam"})
	require.NoError(t, err)
	require.NoError(t, f.events.Delete(ctx, event.ID))

	_, err = svc.Resolve(ctx, f.actor, report.ID, ResolveReportInput{Action: "delete_content"})
	require.NoError(t, err)
}

func TestReportService_ResolveBlockUser(t *testing.T) {
	f := newFixture(t)
	svc := f.reportService()
	ctx := context.Background()

	troll := testutil.CreateUser(t, f.db, "troll", false)
	reporter := testutil.CreateUser(t, f.db, "reporter", false)
	report, err := svc.Create(ctx, ReportInput{ReporterID: reporter.ID, TargetType: "USER", TargetID: troll.ID, Reason: "harassment"})
	require.NoError(t, err)

	_, err = svc.Resolve(ctx, f.actor, report.ID, ResolveReportInput{Action: "block_user"})
	require.NoError(t, err)

	blocked, err := f.users.GetByID(ctx, troll.ID)
	require.NoError(t, err)
	assert.True(t, blocked.IsBlocked)
	assert.Contains(t, f.auditActions(t), models.ActionUserBlock)

	list, total, err := svc.List(ctx, repository.ReportFilter{Status: "resolved"}, repository.Page{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, report.ID, list[0].ID)
}

func TestReportService_ResolveRejectsUnknownAction(t *testing.T) {
	f := newFixture(t)
	svc := f.reportService()

	_, err := svc.Resolve(context.Background(), f.actor, 1, ResolveReportInput{Action: "ban_forever"})
	assertAppCode(t, err, models.CodeValidation)
}

func TestReportService_DeleteContentOnUserReport(t *testing.T) {
	f := newFixture(t)
	svc := f.reportService()
	ctx := context.Background()

	target := testutil.CreateUser(t, f.db, "target", false)
	reporter := testutil.CreateUser(t, f.db, "reporter", false)
	report, err := svc.Create(ctx, ReportInput{ReporterID: reporter.ID, TargetType: "USER", TargetID: target.ID, Reason: "x"})
	require.NoError(t, err)

	_, err = svc.Resolve(ctx, f.actor, report.ID, ResolveReportInput{Action: "delete_content"})
	assertAppCode(t, err, models.CodeValidation)
}
