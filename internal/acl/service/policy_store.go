// Package service implements policy storage and access decision evaluation.
// The store keeps an immutable snapshot of the rule set behind an atomic
// pointer so evaluation never blocks on reloads and never observes a partial
// rule set.
package service

import (
	"sync/atomic"

	aclDomain "github.com/allisson/keyguard/internal/acl/domain"
)

// policySnapshot is an immutable index of rules by subject.
type policySnapshot struct {
	rules map[string]aclDomain.Rule
}

// emptySnapshot is the initial state before any rules are loaded.
// An empty snapshot denies everything (fail closed).
var emptySnapshot = &policySnapshot{rules: map[string]aclDomain.Rule{}}

// PolicyStore holds the active rule set. Lookups read the current snapshot;
// Replace swaps in a fully built new snapshot atomically.
type PolicyStore struct {
	snapshot atomic.Pointer[policySnapshot]
}

// NewPolicyStore creates an empty PolicyStore.
func NewPolicyStore() *PolicyStore {
	store := &PolicyStore{}
	store.snapshot.Store(emptySnapshot)
	return store
}

// Replace validates the rule set and atomically swaps it in as the new
// snapshot. A rule set with duplicate subjects is rejected and the previous
// snapshot stays active.
func (p *PolicyStore) Replace(rules []aclDomain.Rule) error {
	index := make(map[string]aclDomain.Rule, len(rules))
	for _, rule := range rules {
		if _, exists := index[rule.Subject]; exists {
			return aclDomain.ErrDuplicateSubject
		}
		index[rule.Subject] = rule
	}

	p.snapshot.Store(&policySnapshot{rules: index})
	return nil
}

// Lookup returns the rule for a subject in the current snapshot.
func (p *PolicyStore) Lookup(subject string) (aclDomain.Rule, bool) {
	rule, ok := p.snapshot.Load().rules[subject]
	return rule, ok
}

// Rules returns a copy of all rules in the current snapshot.
func (p *PolicyStore) Rules() []aclDomain.Rule {
	snapshot := p.snapshot.Load()
	rules := make([]aclDomain.Rule, 0, len(snapshot.rules))
	for _, rule := range snapshot.rules {
		rules = append(rules, rule)
	}
	return rules
}

// Len returns the number of rules in the current snapshot.
func (p *PolicyStore) Len() int {
	return len(p.snapshot.Load().rules)
}
