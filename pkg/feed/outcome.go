package feed

import (
	"fmt"

	"github.com/Adda-Baaj/arogya-feed/internal/domain"
)

// State is the observable disposition of a feed load.
type State int

const (
	StateLoading State = iota
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// MarshalText renders the state name in JSON payloads.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Outcome is the result of one feed load. Articles is only set when
// State is StateReady; Err is only set when State is StateFailed.
type Outcome struct {
	State    State            `json:"state"`
	Articles []domain.Article `json:"articles"`
	Err      error            `json:"-"`
}

// Empty reports a successful load with nothing to show.
func (o Outcome) Empty() bool {
	return o.State == StateReady && len(o.Articles) == 0
}

func failed(err error) Outcome {
	return Outcome{State: StateFailed, Err: err}
}
