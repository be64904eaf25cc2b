// Package ports defines the interfaces (contracts) that adapters must implement
// and the option/stat types shared across layer boundaries. Domain logic depends
// only on these, never on concrete implementations.
package ports

// MatchOptions controls pattern loading and matching behavior. One instance is
// built from CLI flags (or the daemon config file) and passed unchanged through
// the load and match paths.
type MatchOptions struct {
	// Matching extracts the literal input substring that realized each match.
	// Forced on in server mode.
	Matching bool `yaml:"matching"`

	// LCSS enables the out-of-order refiner: a pattern whose words were sighted
	// out of order still matches when the longest in-order run of its sighted
	// words covers every word, or covers every must-have word. A pattern with
	// no must-have words therefore still needs all of its words in order.
	LCSS bool `yaml:"lcss"`

	// Verify re-checks every emitted match against an Aho-Corasick automaton
	// over the canonical pattern words before reporting it.
	Verify bool `yaml:"verify"`

	// RemoveStopwords drops stopword tokens during pattern normalization.
	RemoveStopwords bool `yaml:"remove_stopwords"`

	// AddressMode replaces characters outside [A-Za-z0-9\s*\-^] with spaces
	// instead of rejecting the pattern line.
	AddressMode bool `yaml:"address_mode"`
}
