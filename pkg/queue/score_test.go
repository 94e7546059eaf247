package queue

import (
	"math"
	"testing"
	"time"
)

func TestNowScoreLength(t *testing.T) {
	now := time.Unix(1700000000, 123*int64(time.Millisecond))
	got := nowScore(now)
	want := "1700000000123"
	if got != want {
		t.Fatalf("nowScore = %q, want %q", got, want)
	}
}

func TestScoreDueLengthThenLex(t *testing.T) {
	now := "1700000000000"

	cases := []struct {
		name  string
		score string
		due   bool
	}{
		{"shorter is due", "999999999999", true},
		{"equal and smaller is due", "1699999999999", true},
		{"equal and same is due", "1700000000000", true},
		{"equal and larger is not due", "1700000000001", false},
		{"longer is not due", "17000000000001", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := scoreDue(tc.score, now); got != tc.due {
				t.Fatalf("scoreDue(%q, %q) = %v, want %v", tc.score, now, got, tc.due)
			}
		})
	}
}

func TestComputeDelayScoreCarriesIntoSeconds(t *testing.T) {
	// 500ms into the current second, plus a 600ms delay, must carry
	// one full second and land on ms=100.
	now := time.Unix(1700000000, 500*int64(time.Millisecond))
	got, err := computeDelayScore(now, 600)
	if err != nil {
		t.Fatalf("computeDelayScore: %v", err)
	}
	want := "1700000001100"
	if got != want {
		t.Fatalf("computeDelayScore = %q, want %q", got, want)
	}
}

func TestComputeDelayScoreOrdersByActualDueTime(t *testing.T) {
	// A 1ms delay that crosses a second boundary must still order
	// after a 2ms-earlier-scheduled message that doesn't cross one,
	// i.e. carry propagation must not desynchronize (length, lex)
	// ordering from real chronological order.
	now := time.Unix(1700000000, 999*int64(time.Millisecond))
	crossing, err := computeDelayScore(now, 1)
	if err != nil {
		t.Fatalf("computeDelayScore: %v", err)
	}

	earlier := time.Unix(1700000000, 997*int64(time.Millisecond))
	noncrossing, err := computeDelayScore(earlier, 1)
	if err != nil {
		t.Fatalf("computeDelayScore: %v", err)
	}

	if !scoreDue(noncrossing, crossing) {
		t.Fatalf("expected %q (scheduled earlier) to be due before %q", noncrossing, crossing)
	}
}

func TestComputeDelayScoreOverflow(t *testing.T) {
	now := time.Unix(math.MaxInt64-5, 0)
	_, err := computeDelayScore(now, 10_000)
	if err == nil {
		t.Fatal("expected overflow error")
	}
	if !IsKind(err, KindTransport) {
		t.Fatalf("expected TransportError, got %v", err)
	}
}
