package manifest

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/aymanbagabas/go-udiff"

	"github.com/git-pkgs/libyear/internal/core"
)

// File is one parsed project file. All methods are safe for concurrent use;
// writes to the same File are serialized.
type File struct {
	Path    string
	Dialect Dialect

	mu   sync.Mutex
	doc  *document
	mode fs.FileMode
}

// Load reads path using the built-in dialect claiming its file name.
func Load(path string) (*File, error) {
	d, ok := DialectFor(path)
	if !ok {
		return nil, &FileError{Path: path, Op: "load", Err: ErrNoDialect}
	}
	return LoadDialect(path, d)
}

// LoadDialect reads path as the given dialect.
func LoadDialect(path string, d Dialect) (*File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &FileError{Path: path, Op: "read", Err: err}
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, &FileError{Path: path, Op: "read", Err: err}
	}

	f, err := Parse(path, d, src)
	if err != nil {
		return nil, err
	}
	f.mode = info.Mode().Perm()
	return f, nil
}

// Parse builds a File from content already in memory.
func Parse(path string, d Dialect, src []byte) (*File, error) {
	doc, err := parseDocument(src, d)
	if err != nil {
		return nil, &FileError{Path: path, Op: "parse", Err: err}
	}
	return &File{Path: path, Dialect: d, doc: doc, mode: 0o644}, nil
}

// Bytes returns a copy of the current file content.
func (f *File) Bytes() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return bytes.Clone(f.doc.src)
}

// Packages returns the declared packages in document order. Elements
// without an identifier are skipped, and a repeated identifier keeps its
// first declaration. A version that does not parse fails the whole file.
func (f *File) Packages() ([]core.PackageReference, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	seen := make(map[string]bool)
	var refs []core.PackageReference
	for i := range f.doc.decls {
		decl := &f.doc.decls[i]
		name, ok := decl.probe(f.Dialect.NameKeys)
		if !ok || name.text == "" {
			continue
		}
		key := strings.ToLower(name.text)
		if seen[key] {
			continue
		}
		seen[key] = true

		version, _ := decl.probe(f.Dialect.VersionKeys)
		ref, err := core.NewPackageReference(name.text, version.text)
		if err != nil {
			return nil, &FileError{Path: f.Path, Op: "parse", Err: fmt.Errorf("package %s: %w", name.text, err)}
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// Rewrite returns the file content with every matching declaration moved
// to its latest release, and the number of declarations changed. The File
// itself is not modified.
func (f *File) Rewrite(results []core.Result) ([]byte, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rewrite(results)
}

func (f *File) rewrite(results []core.Result) ([]byte, int) {
	var edits []edit
	for i := range f.doc.decls {
		decl := &f.doc.decls[i]
		name, ok := decl.probe(f.Dialect.NameKeys)
		if !ok || name.text == "" {
			continue
		}
		version, ok := decl.probe(f.Dialect.VersionKeys)
		if !ok || !version.writable() {
			continue
		}
		for _, r := range results {
			if target, ok := replacement(r, name.text, version.text); ok {
				edits = append(edits, edit{start: version.start, end: version.end, text: escape(target)})
				break
			}
		}
	}

	if len(edits) == 0 {
		return bytes.Clone(f.doc.src), 0
	}
	return f.doc.apply(edits), len(edits)
}

// replacement returns the version a declaration of name at token should be
// rewritten to. Only declarations still at the installed version move, and
// only forward.
func replacement(r core.Result, name, token string) (string, bool) {
	if !strings.EqualFold(r.Name, name) || r.Installed == nil || r.Latest == nil {
		return "", false
	}
	if r.Installed.IsWildcard() || !matchesInstalled(token, r.Installed) {
		return "", false
	}
	if !r.Installed.LessThan(r.Latest.Version) {
		return "", false
	}
	return r.Latest.Version.String(), true
}

func matchesInstalled(token string, installed *core.Version) bool {
	if token == installed.String() {
		return true
	}
	v, err := core.ParseVersion(token)
	return err == nil && !v.IsWildcard() && v.Equal(installed)
}

// Diff returns a unified diff of what Update would write, or "" when
// nothing would change.
func (f *File) Diff(results []core.Result) string {
	f.mu.Lock()
	defer f.mu.Unlock()

	out, n := f.rewrite(results)
	if n == 0 {
		return ""
	}
	return udiff.Unified("a/"+filepath.ToSlash(f.Path), "b/"+filepath.ToSlash(f.Path), string(f.doc.src), string(out))
}

// Update rewrites matching declarations on disk and returns how many
// changed. The file is replaced atomically, so a failed write leaves the
// previous content in place.
func (f *File) Update(results []core.Result) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out, n := f.rewrite(results)
	if n == 0 {
		return 0, nil
	}

	if err := writeFileAtomic(f.Path, out, f.mode); err != nil {
		return 0, &FileError{Path: f.Path, Op: "write", Err: err}
	}

	doc, err := parseDocument(out, f.Dialect)
	if err != nil {
		return n, &FileError{Path: f.Path, Op: "parse", Err: err}
	}
	f.doc = doc
	return n, nil
}

// writeFileAtomic writes data to a temp file next to filename and renames
// it into place.
func writeFileAtomic(filename string, data []byte, perm fs.FileMode) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(filename), "."+filepath.Base(filename)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Chmod(perm); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filename)
}
