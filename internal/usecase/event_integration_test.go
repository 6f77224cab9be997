//go:build integration

package usecase_test

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"pr-review-analytics/internal/database"
	"pr-review-analytics/internal/domain"
	"pr-review-analytics/internal/repository"
	"pr-review-analytics/internal/usecase"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const deliveries = 8

type ConcurrentDeliveryTestSuite struct {
	suite.Suite
	ctx       context.Context
	container *postgres.PostgresContainer
	db        *sql.DB

	repos usecase.Repositories
	uc    domain.EventUseCase
}

func (suite *ConcurrentDeliveryTestSuite) SetupSuite() {
	suite.ctx = context.Background()

	container, err := postgres.Run(suite.ctx, "postgres:16-alpine",
		postgres.WithDatabase("pr_review_analytics_concurrency"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	dsn, err := container.ConnectionString(suite.ctx, "sslmode=disable")
	suite.Require().NoError(err)
	suite.db, err = database.OpenPostgres(dsn)
	suite.Require().NoError(err)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	suite.repos = usecase.Repositories{
		PullRequests:  repository.NewPRRepository(suite.db),
		Reviews:       repository.NewReviewRepository(suite.db),
		Comments:      repository.NewReviewCommentRepository(suite.db),
		Commits:       repository.NewCommitRepository(suite.db),
		Lifecycles:    repository.NewLifecycleRepository(suite.db),
		Bottlenecks:   repository.NewBottleneckRepository(suite.db),
		Sessions:      repository.NewReviewSessionRepository(suite.db),
		ResponseTimes: repository.NewResponseTimeRepository(suite.db),
		Activities:    repository.NewReviewActivityRepository(suite.db),
		Analyses:      repository.NewCommentAnalysisRepository(suite.db),
		Snapshots:     repository.NewSnapshotRepository(suite.db),
	}
	suite.uc = usecase.NewEventUseCase(database.NewTxManager(suite.db, logger, 5), suite.repos, logger)
}

func (suite *ConcurrentDeliveryTestSuite) TearDownSuite() {
	if suite.db != nil {
		suite.db.Close()
	}
	if suite.container != nil {
		suite.NoError(testcontainers.TerminateContainer(suite.container))
	}
}

// deliverAll отправляет события одновременно и возвращает результаты в порядке событий.
func (suite *ConcurrentDeliveryTestSuite) deliverAll(events []domain.Event) []domain.HandleResult {
	results := make([]domain.HandleResult, len(events))
	errs := make([]error, len(events))

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i, ev := range events {
		wg.Add(1)
		go func(i int, ev domain.Event) {
			defer wg.Done()
			<-start
			results[i], errs[i] = suite.uc.Handle(suite.ctx, fmt.Sprintf("delivery-%d", i), ev)
		}(i, ev)
	}
	close(start)
	wg.Wait()

	for i, err := range errs {
		suite.Require().NoError(err, "delivery %d", i)
	}
	return results
}

func (suite *ConcurrentDeliveryTestSuite) open(prID int64) {
	_, err := suite.uc.Handle(suite.ctx, "open", domain.PullRequestOpened{
		PullRequestID: prID,
		Author:        "alice",
		ChangeStats:   domain.ChangeStats{Additions: 100, Deletions: 50, ChangedFiles: 4},
		CommitCount:   3,
		CreatedAt:     t0,
	})
	suite.Require().NoError(err)
}

func countApplied(results []domain.HandleResult) int {
	applied := 0
	for _, r := range results {
		if !r.Duplicate {
			applied++
		}
	}
	return applied
}

func repeat(ev domain.Event) []domain.Event {
	events := make([]domain.Event, deliveries)
	for i := range events {
		events[i] = ev
	}
	return events
}

func (suite *ConcurrentDeliveryTestSuite) TestSameOpenedDeliveredConcurrently() {
	results := suite.deliverAll(repeat(domain.PullRequestOpened{
		PullRequestID: 1,
		Author:        "alice",
		ChangeStats:   domain.ChangeStats{Additions: 10, Deletions: 5, ChangedFiles: 1},
		CommitCount:   1,
		CreatedAt:     t0,
	}))

	suite.Equal(1, countApplied(results))

	snapshot, err := suite.repos.Snapshots.FindByPRID(suite.ctx, 1)
	suite.Require().NoError(err)
	suite.Require().NotNil(snapshot)
	suite.Equal(15, snapshot.Summary.TotalChanges)
}

func (suite *ConcurrentDeliveryTestSuite) TestSameReviewDeliveredConcurrently() {
	suite.open(2)

	results := suite.deliverAll(repeat(domain.ReviewSubmitted{
		ReviewID:      20,
		PullRequestID: 2,
		Reviewer:      "bob",
		State:         domain.ReviewChangesRequested,
		CommentCount:  3,
		SubmittedAt:   at(60),
	}))

	suite.Equal(1, countApplied(results))

	count, err := suite.repos.Reviews.CountByPR(suite.ctx, 2)
	suite.Require().NoError(err)
	suite.Equal(1, count)

	activity, err := suite.repos.Activities.FindByPRID(suite.ctx, 2)
	suite.Require().NoError(err)
	suite.Require().NotNil(activity)
	suite.Equal(1, activity.ReviewRoundTrips)
	suite.Equal(3, activity.TotalCommentCount)

	session, err := suite.repos.Sessions.Find(suite.ctx, 2, "bob")
	suite.Require().NoError(err)
	suite.Require().NotNil(session)
	suite.Equal(1, session.ReviewCount)

	rt, err := suite.repos.ResponseTimes.FindByPRID(suite.ctx, 2)
	suite.Require().NoError(err)
	suite.Require().NotNil(rt)
	suite.Equal(1, rt.ChangesRequestedCount)
}

func (suite *ConcurrentDeliveryTestSuite) TestSameReviewerAddedConcurrently() {
	suite.open(3)

	results := suite.deliverAll(repeat(domain.ReviewerAdded{
		PullRequestID: 3,
		Reviewer:      "carol",
		RequestedAt:   at(5),
	}))

	suite.Equal(1, countApplied(results))

	count, err := suite.repos.PullRequests.CountReviewers(suite.ctx, 3)
	suite.Require().NoError(err)
	suite.Equal(1, count)

	activity, err := suite.repos.Activities.FindByPRID(suite.ctx, 3)
	suite.Require().NoError(err)
	suite.Require().NotNil(activity)
	suite.Equal(1, activity.AdditionalReviewerCount)
}

func (suite *ConcurrentDeliveryTestSuite) TestDistinctReviewsDeliveredConcurrently() {
	suite.open(4)

	events := make([]domain.Event, deliveries)
	for i := range events {
		events[i] = domain.ReviewSubmitted{
			ReviewID:      int64(400 + i),
			PullRequestID: 4,
			Reviewer:      fmt.Sprintf("reviewer-%d", i),
			State:         domain.ReviewCommented,
			CommentCount:  1,
			SubmittedAt:   at(10 + i),
		}
	}

	results := suite.deliverAll(events)

	suite.Equal(deliveries, countApplied(results))

	count, err := suite.repos.Reviews.CountByPR(suite.ctx, 4)
	suite.Require().NoError(err)
	suite.Equal(deliveries, count)

	activity, err := suite.repos.Activities.FindByPRID(suite.ctx, 4)
	suite.Require().NoError(err)
	suite.Require().NotNil(activity)
	suite.Equal(deliveries, activity.ReviewRoundTrips)
	suite.Equal(deliveries, activity.TotalCommentCount)

	sessions, err := suite.repos.Sessions.ListByPRID(suite.ctx, 4)
	suite.Require().NoError(err)
	suite.Len(sessions, deliveries)

	bottleneck, err := suite.repos.Bottlenecks.FindByPRID(suite.ctx, 4)
	suite.Require().NoError(err)
	suite.Require().NotNil(bottleneck)
	suite.True(bottleneck.FirstReviewAt.Equal(at(10)))
	suite.True(bottleneck.LastReviewAt.Equal(at(10 + deliveries - 1)))
	suite.Equal(int64(10), bottleneck.ReviewWait.Minutes())
	suite.Equal(int64(deliveries-1), bottleneck.ReviewProgress.Minutes())
}

func TestConcurrentDeliveryTestSuite(t *testing.T) {
	suite.Run(t, new(ConcurrentDeliveryTestSuite))
}
