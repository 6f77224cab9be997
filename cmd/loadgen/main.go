package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"pr-review-analytics/api"

	"github.com/google/uuid"
	vegeta "github.com/tsenart/vegeta/v12/lib"
)

var (
	targetHost = flag.String("host", "http://localhost:8080", "base URL of the analytics service")
	rps        = flag.Int("rps", 20, "requests per second")
	duration   = flag.Duration("duration", time.Minute, "attack duration")
	seedPRs    = flag.Int("prs", 100, "pull requests opened before the attack")
)

var (
	httpc = &http.Client{Timeout: 10 * time.Second}

	mu         sync.Mutex
	rng        = rand.New(rand.NewSource(time.Now().UnixNano()))
	prIDs      []int64
	reviewsOf  = map[int64][]int64{}
	deliveries []delivered

	nextReviewID  atomic.Int64
	nextCommentID atomic.Int64
	nextCommitSeq atomic.Int64
)

// delivered — отправленное событие, которое можно доставить повторно.
type delivered struct {
	id   string
	body []byte
}

func envelope(kind eventType, payload any) []byte {
	raw, _ := json.Marshal(payload)
	body, _ := json.Marshal(api.EventEnvelope{Type: string(kind), Payload: raw})
	return body
}

// eventType — тип события в конверте вебхука.
type eventType string

const (
	opened          eventType = "pull_request_opened"
	reviewSubmitted eventType = "review_submitted"
	commentCreated  eventType = "review_comment_created"
	commitPushed    eventType = "commit_pushed"
	reviewerAdded   eventType = "reviewer_added"
)

const maxRemembered = 1000

func postEvent(body []byte) (int, error) {
	req, _ := http.NewRequest(http.MethodPost, *targetHost+"/webhooks/events", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(api.DeliveryHeader, uuid.NewString())
	resp, err := httpc.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}

// Seed
func seedData() error {
	log.Printf("Seeding: opening %d pull requests...", *seedPRs)

	base := time.Now().UTC().Add(-24 * time.Hour).Truncate(time.Minute)
	for i := 1; i <= *seedPRs; i++ {
		prID := base.Unix()*1000 + int64(i)
		body := envelope(opened, api.PullRequestOpenedPayload{
			PullRequestId: prID,
			Author:        fmt.Sprintf("author-%d", i%10),
			Additions:     rng.Intn(500),
			Deletions:     rng.Intn(200),
			ChangedFiles:  1 + rng.Intn(20),
			CommitCount:   1 + rng.Intn(5),
			CreatedAt:     base,
			Files: []api.ChangedFile{
				{Filename: "main.go", Status: "modified", Additions: 10, Deletions: 2},
				{Filename: "README.md", Status: "added", Additions: 5},
			},
		})

		status, err := postEvent(body)
		if err != nil {
			return err
		}
		if status >= 400 {
			log.Printf("WARN opened returned %d\n", status)
			continue
		}
		prIDs = append(prIDs, prID)
	}

	log.Printf("Seed completed: prs=%d\n", len(prIDs))
	return nil
}

// Targeter
func makeTargeter() vegeta.Targeter {
	return func(t *vegeta.Target) error {
		mu.Lock()
		defer mu.Unlock()

		r := rng.Float64()
		prID := prIDs[rng.Intn(len(prIDs))]
		now := time.Now().UTC()

		t.Method = http.MethodPost
		t.URL = *targetHost + "/webhooks/events"
		t.Header = http.Header{"Content-Type": {"application/json"}}

		switch {
		// 30% GET analytics
		case r < 0.30:
			t.Method = http.MethodGet
			t.URL = fmt.Sprintf("%s/pull-requests/%d/analytics", *targetHost, prID)
			t.Body = nil
			t.Header = http.Header{"Accept": {"application/json"}}
			return nil

		// 10% повторная доставка уже отправленного события
		case r < 0.40 && len(deliveries) > 0:
			d := deliveries[rng.Intn(len(deliveries))]
			t.Body = d.body
			t.Header.Set(api.DeliveryHeader, d.id)
			return nil

		// 25% review
		case r < 0.65:
			reviewID := nextReviewID.Add(1)
			states := []string{"APPROVED", "CHANGES_REQUESTED", "COMMENTED"}
			t.Body = envelope(reviewSubmitted, api.ReviewSubmittedPayload{
				ReviewId:      reviewID,
				PullRequestId: prID,
				Reviewer:      fmt.Sprintf("reviewer-%d", rng.Intn(5)),
				State:         states[rng.Intn(len(states))],
				CommentCount:  rng.Intn(4),
				SubmittedAt:   now,
			})
			reviewsOf[prID] = append(reviewsOf[prID], reviewID)

		// 15% comment
		case r < 0.80 && len(reviewsOf[prID]) > 0:
			body := "please take a look @someone\n```go\nfmt.Println()\n```"
			t.Body = envelope(commentCreated, api.ReviewCommentPayload{
				ReviewCommentId: nextCommentID.Add(1),
				ReviewId:        reviewsOf[prID][rng.Intn(len(reviewsOf[prID]))],
				Body:            &body,
				UpdatedAt:       now,
			})

		// 15% commit
		case r < 0.95:
			t.Body = envelope(commitPushed, api.CommitPushedPayload{
				PullRequestId: prID,
				Sha:           fmt.Sprintf("%040d", nextCommitSeq.Add(1)),
				Additions:     rng.Intn(50),
				Deletions:     rng.Intn(20),
				CommittedAt:   now,
			})

		// 5% reviewer added
		default:
			t.Body = envelope(reviewerAdded, api.ReviewerAddedPayload{
				PullRequestId: prID,
				Reviewer:      fmt.Sprintf("reviewer-%d", rng.Intn(5)),
				RequestedAt:   now,
			})
		}

		id := uuid.NewString()
		t.Header.Set(api.DeliveryHeader, id)
		deliveries = append(deliveries, delivered{id: id, body: t.Body})
		if len(deliveries) > maxRemembered {
			deliveries = deliveries[len(deliveries)-maxRemembered:]
		}
		return nil
	}
}

// Attack
func runAttack() {
	rate := vegeta.Rate{Freq: *rps, Per: time.Second}
	attacker := vegeta.NewAttacker()
	targeter := makeTargeter()

	var metrics vegeta.Metrics

	log.Printf("Starting attack: %s for %s", *targetHost, *duration)
	for res := range attacker.Attack(targeter, rate, *duration, "webhook-load") {
		metrics.Add(res)
	}
	metrics.Close()

	fmt.Println("=== Results ===")
	fmt.Printf("Requests: %d\n", metrics.Requests)
	fmt.Printf("Success rate: %.4f%%\n", metrics.Success*100)
	fmt.Printf("Latency mean: %s\n", metrics.Latencies.Mean)
	fmt.Printf("Latency P95: %s\n", metrics.Latencies.P95)
	fmt.Printf("Latency P99: %s\n", metrics.Latencies.P99)
	fmt.Printf("Status codes: %v\n", metrics.StatusCodes)
}

func main() {
	flag.Parse()

	if err := seedData(); err != nil {
		log.Fatalf("Seed failed: %v", err)
	}
	if len(prIDs) == 0 {
		log.Fatal("No pull requests seeded")
	}

	runAttack()
}
