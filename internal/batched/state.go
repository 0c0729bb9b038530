package batched

// State is the protocol position of one batched-retrieval exchange.
type State string

// Protocol states
const (
	// StateAwaitingFirstFetch means no retrieval has happened yet; the next
	// round must force one
	StateAwaitingFirstFetch State = "awaiting_first_fetch"
	// StateFetching means some but not all batches have been served
	StateFetching State = "fetching"
	// StateGenerating means every expected batch has been served and the
	// backend runs under the full generation instruction
	StateGenerating State = "generating"
	// StateDone means the backend returned a final answer
	StateDone State = "done"
	// StateFailed means the exchange hit its iteration cap
	StateFailed State = "failed"
)

// machine tracks protocol progress keyed on what the backend does each
// round, separate from the message plumbing so the cap and instruction-swap
// rules are testable without a backend.
type machine struct {
	state           State
	batchSize       int
	expectedBatches int
	fetched         map[int]bool
}

func newMachine(totalRoles, batchSize int) *machine {
	return &machine{
		state:           StateAwaitingFirstFetch,
		batchSize:       batchSize,
		expectedBatches: (totalRoles + batchSize - 1) / batchSize,
		fetched:         make(map[int]bool),
	}
}

// forceFetch reports whether the next round must force a retrieval call. The
// backend is not trusted to initiate fetching on its own.
func (m *machine) forceFetch() bool {
	return m.state == StateAwaitingFirstFetch
}

// allFetched reports whether every expected batch has been served.
func (m *machine) allFetched() bool {
	return len(m.fetched) >= m.expectedBatches
}

// observeFetch transitions on a retrieval request for startIndex.
func (m *machine) observeFetch(startIndex int) {
	if startIndex < 0 {
		startIndex = 0
	}
	m.fetched[startIndex/m.batchSize] = true
	if m.allFetched() {
		m.state = StateGenerating
	} else {
		m.state = StateFetching
	}
}

// observeAnswer transitions on a final answer.
func (m *machine) observeAnswer() {
	m.state = StateDone
}

// fail marks the exchange as capped out.
func (m *machine) fail() {
	m.state = StateFailed
}

// batchesFetched returns how many distinct batches have been served.
func (m *machine) batchesFetched() int {
	return len(m.fetched)
}
