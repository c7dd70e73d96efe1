package typeface

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"

	"github.com/gogpu/segcache"
)

// Family is a group of typefaces sharing a family name.
type Family struct {
	Name      string
	Typefaces []*Typeface
}

// Manager is a registry of typefaces. A typeface can be registered with an
// optional tag that identifies it, and looked up by tag, full name or family
// name. Name matching is case-insensitive.
//
// Manager is safe for concurrent use.
type Manager struct {
	mu        sync.Mutex
	typefaces []*Typeface
	tags      map[any]*Typeface
	tagOf     map[*Typeface]any
	sorted    bool
}

// NewManager creates an empty registry.
func NewManager() *Manager {
	return &Manager{
		tags:  make(map[any]*Typeface),
		tagOf: make(map[*Typeface]any),
	}
}

// Register adds tf to the registry. tag is optional (nil for none) and must
// be comparable. It returns ErrAlreadyRegistered or ErrTagTaken.
func (m *Manager) Register(tf *Typeface, tag any) error {
	if tf == nil {
		return errors.New("typeface: Register called with nil typeface")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if slices.Contains(m.typefaces, tf) {
		return ErrAlreadyRegistered
	}
	if tag != nil {
		if _, ok := m.tags[tag]; ok {
			return fmt.Errorf("%w: %v", ErrTagTaken, tag)
		}
		m.tags[tag] = tf
		m.tagOf[tf] = tag
	}

	m.typefaces = append(m.typefaces, tf)
	m.sorted = false

	segcache.Logger().Info("typeface: registered", "name", tf.FullName(), "tag", tag)
	return nil
}

// Unregister removes tf and its tag from the registry.
func (m *Manager) Unregister(tf *Typeface) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := slices.Index(m.typefaces, tf)
	if i < 0 {
		return ErrNotRegistered
	}
	m.typefaces = slices.Delete(m.typefaces, i, i+1)
	if tag, ok := m.tagOf[tf]; ok {
		delete(m.tags, tag)
		delete(m.tagOf, tf)
	}
	return nil
}

// ByTag returns the typeface registered with tag.
func (m *Manager) ByTag(tag any) (*Typeface, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tf, ok := m.tags[tag]
	return tf, ok
}

// TagOf returns the tag tf was registered with, nil if it has none.
func (m *Manager) TagOf(tf *Typeface) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !slices.Contains(m.typefaces, tf) {
		return nil, ErrNotRegistered
	}
	return m.tagOf[tf], nil
}

// ByFullName returns the registered typeface with the given full name.
func (m *Manager) ByFullName(fullName string) (*Typeface, bool) {
	want := foldName(fullName)

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, tf := range m.typefaces {
		if foldName(tf.FullName()) == want {
			return tf, true
		}
	}
	return nil, false
}

// Family returns the registered typefaces of a family, sorted by style.
func (m *Manager) Family(familyName string) (Family, bool) {
	want := foldName(familyName)

	m.mu.Lock()
	m.sortLocked()
	var members []*Typeface
	for _, tf := range m.typefaces {
		if foldName(tf.FamilyName()) == want {
			members = append(members, tf)
		}
	}
	m.mu.Unlock()

	if len(members) == 0 {
		return Family{}, false
	}
	return Family{Name: familyName, Typefaces: members}, true
}

// Families returns every registered family sorted by name.
func (m *Manager) Families() []Family {
	m.mu.Lock()
	m.sortLocked()
	var families []Family
	for _, tf := range m.typefaces {
		n := len(families)
		if n > 0 && foldName(families[n-1].Name) == foldName(tf.FamilyName()) {
			families[n-1].Typefaces = append(families[n-1].Typefaces, tf)
			continue
		}
		families = append(families, Family{Name: tf.FamilyName(), Typefaces: []*Typeface{tf}})
	}
	m.mu.Unlock()

	return families
}

// Typefaces returns every registered typeface sorted by family then style.
func (m *Manager) Typefaces() []*Typeface {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sortLocked()
	return slices.Clone(m.typefaces)
}

// Preload loads and registers the font files at paths concurrently.
// Each typeface is registered with its path as tag. On the first failure
// the remaining loads are cancelled and the error is returned; typefaces
// registered before the failure stay registered.
func (m *Manager) Preload(ctx context.Context, paths []string, opts ...Option) ([]*Typeface, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	loaded := make([]*Typeface, len(paths))
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			tf, err := NewFromFile(path, opts...)
			if err != nil {
				return fmt.Errorf("typeface: preload %s: %w", path, err)
			}
			if err := m.Register(tf, path); err != nil {
				return err
			}
			loaded[i] = tf
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return loaded, nil
}

// sortLocked orders typefaces by family name then style name.
// Caller must hold m.mu.
func (m *Manager) sortLocked() {
	if m.sorted {
		return
	}
	slices.SortStableFunc(m.typefaces, func(a, b *Typeface) int {
		return cmp.Or(
			cmp.Compare(foldName(a.FamilyName()), foldName(b.FamilyName())),
			cmp.Compare(foldName(a.StyleName()), foldName(b.StyleName())),
		)
	})
	m.sorted = true
}

// foldName returns the case-folded form of a name for comparisons.
// A Caser is stateful, so each call gets its own.
func foldName(s string) string {
	return cases.Fold().String(s)
}
