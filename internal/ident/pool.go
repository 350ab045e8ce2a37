// Package ident interns the namespace and key strings that identify
// items and blocks, so that identifiers compare and hash as two
// integers instead of two strings.
package ident

import (
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Sym is an index into a Pool. The zero Sym always resolves to the
// empty string.
type Sym uint32

// ID names a registered item or block as a namespace plus a key,
// both interned in the same Pool.
type ID struct {
	Namespace Sym
	Key       Sym
}

// Zero reports whether the ID is the zero value, which no registered
// content uses.
func (id ID) Zero() bool {
	return id == ID{}
}

// Pool is a thread safe string interner.
type Pool struct {
	mu    sync.Mutex
	index map[string]Sym
	strs  []string

	title cases.Caser
}

// NewPool returns a Pool with the empty string pre-interned at Sym 0.
func NewPool() *Pool {
	p := &Pool{
		index: make(map[string]Sym, 64),
		title: cases.Title(language.English),
	}
	p.Intern("")
	return p
}

// Intern returns the Sym for s, adding it to the pool on first use.
func (p *Pool) Intern(s string) Sym {
	p.mu.Lock()
	defer p.mu.Unlock()
	if sym, ok := p.index[s]; ok {
		return sym
	}
	sym := Sym(len(p.strs))
	p.index[s] = sym
	p.strs = append(p.strs, s)
	return sym
}

// Resolve returns the string behind sym, or "" if sym was never
// handed out by this pool.
func (p *Pool) Resolve(sym Sym) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if int(sym) >= len(p.strs) {
		return ""
	}
	return p.strs[sym]
}

// ID interns both parts and returns the combined identifier.
func (p *Pool) ID(namespace, key string) ID {
	return ID{Namespace: p.Intern(namespace), Key: p.Intern(key)}
}

// IDString renders id as "namespace:key".
func (p *Pool) IDString(id ID) string {
	return p.Resolve(id.Namespace) + ":" + p.Resolve(id.Key)
}

// DisplayName derives a human readable name from the key part of id:
// underscores become spaces and each word is title cased. Content
// tables may override this with a curated name.
func (p *Pool) DisplayName(id ID) string {
	key := p.Resolve(id.Key)
	return p.title.String(strings.ReplaceAll(key, "_", " "))
}
