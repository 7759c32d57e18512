package processing_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/melih/mapserver/internal/core/domain"
	"github.com/melih/mapserver/internal/core/ports/mocks"
	"github.com/melih/mapserver/internal/core/processing"
	"github.com/melih/mapserver/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type notifierMocks struct {
	host     *mocks.MockCodeHost
	comments *mocks.MockCommentStore
	maps     *mocks.MockMapStore
}

func newNotifier(t *testing.T) (*processing.PullRequestNotifier, notifierMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := notifierMocks{
		host:     mocks.NewMockCodeHost(ctrl),
		comments: mocks.NewMockCommentStore(ctrl),
		maps:     mocks.NewMockMapStore(ctrl),
	}
	return processing.NewPullRequestNotifier(m.host, m.comments, m.maps, "https://maps.example.com/", logger.Nop()), m
}

var testPullRequest = domain.PullRequest{
	Owner:      "space-wizards",
	Repository: "space-station",
	Number:     42,
	HeadRef:    "feature",
}

func TestNotifier_StartedCreatesComment(t *testing.T) {
	n, m := newNotifier(t)
	m.comments.EXPECT().FindComment(gomock.Any(), "space-wizards", "space-station", 42).Return(nil, domain.ErrNotFound)
	m.host.EXPECT().CreateComment(gomock.Any(), "space-wizards", "space-station", 42, gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, _ int, body string) (int64, error) {
			assert.Contains(t, body, "- `box.yml`")
			assert.Contains(t, body, "- `bagel.yml`")
			return 7, nil
		})
	m.comments.EXPECT().SaveComment(gomock.Any(), domain.PullRequestComment{
		Owner: "space-wizards", Repository: "space-station", IssueNumber: 42, CommentID: 7,
	}).Return(nil)

	require.NoError(t, n.Started(context.Background(), testPullRequest, []string{"box.yml", "bagel.yml"}))
}

func TestNotifier_StartedKeepsExistingComment(t *testing.T) {
	n, m := newNotifier(t)
	m.comments.EXPECT().FindComment(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&domain.PullRequestComment{CommentID: 7}, nil)

	require.NoError(t, n.Started(context.Background(), testPullRequest, []string{"box.yml"}))
}

func TestNotifier_FinishUpdatesCommentWithLargestGrid(t *testing.T) {
	n, m := newNotifier(t)
	box := &domain.Map{
		MapGUID:     uuid.New(),
		DisplayName: "Box Station",
		Grids: []domain.Grid{
			{GridID: 1, Extent: domain.Area{B: domain.Point{X: 2, Y: 2}}},
			{GridID: 8, Extent: domain.Area{B: domain.Point{X: 100, Y: 80}}},
			{GridID: 3, Extent: domain.Area{B: domain.Point{X: 10, Y: 10}}},
		},
	}
	m.maps.EXPECT().GetMap(gomock.Any(), box.MapGUID).Return(box, nil)
	m.comments.EXPECT().FindComment(gomock.Any(), "space-wizards", "space-station", 42).
		Return(&domain.PullRequestComment{CommentID: 7}, nil)
	m.host.EXPECT().UpdateComment(gomock.Any(), "space-wizards", "space-station", int64(7), gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, _ int64, body string) error {
			assert.Contains(t, body, "**Box Station**")
			assert.Contains(t, body, "(https://maps.example.com/api/v1/images/grid/"+box.MapGUID.String()+"/8)")
			return nil
		})

	result := domain.BuildResult{Ref: "feature", MapIDs: []uuid.UUID{box.MapGUID}}
	require.NoError(t, n.Finish(context.Background(), testPullRequest, result, nil))
}

func TestNotifier_FinishCreatesMissingComment(t *testing.T) {
	n, m := newNotifier(t)
	m.comments.EXPECT().FindComment(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, domain.ErrNotFound)
	m.host.EXPECT().CreateComment(gomock.Any(), "space-wizards", "space-station", 42, gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, _ int, body string) (int64, error) {
			assert.Contains(t, body, "while running run")
			assert.Contains(t, body, domain.ErrRunFailed.Error())
			return 9, nil
		})
	m.comments.EXPECT().SaveComment(gomock.Any(), gomock.Any()).Return(nil)

	err := domain.NewStageError(domain.StageRun, "feature", domain.ErrRunFailed, errors.New("exit status 1"))
	require.NoError(t, n.Finish(context.Background(), testPullRequest, domain.BuildResult{}, err))
}

func TestNotifier_CompletedLogsFailures(t *testing.T) {
	n, m := newNotifier(t)
	m.comments.EXPECT().FindComment(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("database down"))

	n.Completed(testPullRequest)(domain.BuildResult{}, nil)
}
