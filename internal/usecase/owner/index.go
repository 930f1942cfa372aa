package owner

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/meetwise-team/meetwise/internal/domain/entities"
)

// indexEntry is one person in the unified fuzzy index, members and contacts
// together
type indexEntry struct {
	UserID    *uuid.UUID
	ContactID *uuid.UUID
	Name      string
	Email     string

	normName  string
	nameParts []string
	emailUser string // local part of the email, lowercased
}

// fuzzyIndex is a searchable snapshot of one project's roster
type fuzzyIndex struct {
	entries []indexEntry
}

// buildIndex flattens a roster into the unified index
func buildIndex(roster *entities.Roster) *fuzzyIndex {
	entries := make([]indexEntry, 0, len(roster.Members)+len(roster.Contacts))
	for i := range roster.Members {
		member := &roster.Members[i]
		id := member.ID
		entries = append(entries, newEntry(&id, nil, member.Name, member.Email))
	}
	for i := range roster.Contacts {
		contact := &roster.Contacts[i]
		id := contact.ID
		entries = append(entries, newEntry(nil, &id, contact.Name, contact.Email))
	}
	return &fuzzyIndex{entries: entries}
}

func newEntry(userID, contactID *uuid.UUID, name, email string) indexEntry {
	entry := indexEntry{
		UserID:    userID,
		ContactID: contactID,
		Name:      name,
		Email:     email,
		normName:  normalize(name),
	}
	entry.nameParts = strings.Fields(entry.normName)
	if at := strings.Index(email, "@"); at > 0 {
		entry.emailUser = strings.ToLower(email[:at])
	}
	return entry
}

// scored pairs an entry with its similarity to a query
type scored struct {
	entry indexEntry
	score float64
}

// search returns the entries scoring at or above minScore, best first. Ties
// break on name then email so resolution stays deterministic.
func (x *fuzzyIndex) search(query string, minScore float64) []scored {
	norm := normalize(query)
	if norm == "" {
		return nil
	}

	var results []scored
	for _, entry := range x.entries {
		score := entry.similarity(norm)
		if score >= minScore {
			results = append(results, scored{entry: entry, score: score})
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].score != results[j].score {
			return results[i].score > results[j].score
		}
		if results[i].entry.normName != results[j].entry.normName {
			return results[i].entry.normName < results[j].entry.normName
		}
		return results[i].entry.Email < results[j].entry.Email
	})
	return results
}

// similarity scores a normalized query against this entry: the best of the
// full-name edit similarity, the per-token match, and the email local part
func (e *indexEntry) similarity(normQuery string) float64 {
	best := levenshteinSimilarity(normQuery, e.normName)

	queryParts := strings.Fields(normQuery)
	if len(queryParts) > 0 && len(e.nameParts) > 0 {
		if tokenScore := tokenSimilarity(queryParts, e.nameParts); tokenScore > best {
			best = tokenScore
		}
	}

	if e.emailUser != "" {
		if emailScore := levenshteinSimilarity(normQuery, e.emailUser); emailScore > best {
			best = emailScore
		}
	}
	return best
}

// tokenSimilarity averages, over the query tokens, each token's best edit
// similarity against the entry's name tokens. "alice" scores 1.0 against
// "alice smith"; "alice smith" scores 1.0 against "alice smith".
func tokenSimilarity(queryParts, nameParts []string) float64 {
	var total float64
	for _, q := range queryParts {
		best := 0.0
		for _, n := range nameParts {
			if s := levenshteinSimilarity(q, n); s > best {
				best = s
			}
		}
		total += best
	}
	return total / float64(len(queryParts))
}

// levenshteinSimilarity is 1 − (edit distance / longer length), in [0,1]
func levenshteinSimilarity(a, b string) float64 {
	if a == b {
		return 1
	}
	longer := len(a)
	if len(b) > longer {
		longer = len(b)
	}
	if longer == 0 {
		return 1
	}
	return 1 - float64(levenshtein(a, b))/float64(longer)
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = minOf(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func minOf(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(s))), " ")
}

// indexCache holds built indexes keyed by roster fingerprint. Eviction is an
// age check on read, no background sweep.
type indexCache struct {
	mu    sync.Mutex
	ttl   time.Duration
	items map[string]cachedIndex
	now   func() time.Time
}

type cachedIndex struct {
	index   *fuzzyIndex
	builtAt time.Time
}

func newIndexCache(ttl time.Duration) *indexCache {
	return &indexCache{
		ttl:   ttl,
		items: make(map[string]cachedIndex),
		now:   time.Now,
	}
}

// get returns the cached index for the roster, rebuilding when the roster
// changed or the entry aged out. The key is the sorted set of member and
// contact ids, so any roster mutation produces a different key.
func (c *indexCache) get(roster *entities.Roster) *fuzzyIndex {
	key := rosterKey(roster)

	c.mu.Lock()
	defer c.mu.Unlock()

	if cached, ok := c.items[key]; ok && c.now().Sub(cached.builtAt) < c.ttl {
		return cached.index
	}

	index := buildIndex(roster)
	c.items[key] = cachedIndex{index: index, builtAt: c.now()}

	// Drop stale fingerprints so the map does not grow with roster churn.
	for k, cached := range c.items {
		if c.now().Sub(cached.builtAt) >= c.ttl {
			delete(c.items, k)
		}
	}
	return index
}

func rosterKey(roster *entities.Roster) string {
	ids := make([]string, 0, len(roster.Members)+len(roster.Contacts))
	for _, member := range roster.Members {
		ids = append(ids, "m:"+member.ID.String())
	}
	for _, contact := range roster.Contacts {
		ids = append(ids, "c:"+contact.ID.String())
	}
	sort.Strings(ids)
	return strings.Join(ids, ",")
}
