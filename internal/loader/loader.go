// Package loader implements Cantus's source-file loader collaborator:
// resolving a `load path [import] [internal]` statement into the
// concrete .can files to read and the scope name each should be loaded
// under. It only touches the filesystem — parsing and running each file
// under its derived scope is left to internal/evaluator, which is what
// actually owns the scope environment this package only names.
package loader

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const scriptExt = ".can"

// Loader resolves load() requests. IncludeDir is where scope-dotted
// paths ("math.trig") are rooted; BaseDir is where plain relative paths
// are rooted — typically the invoking script's own directory, the same
// `filepath.Dir` of the script path a single-file interpreter entry
// point would already have on hand.
type Loader struct {
	IncludeDir string
	BaseDir    string
}

// New returns a Loader rooted at baseDir, with includeDir for
// scope-dotted lookups.
func New(baseDir, includeDir string) *Loader {
	return &Loader{IncludeDir: includeDir, BaseDir: baseDir}
}

// File is one discovered .can source file paired with the scope name
// derived from its path.
type File struct {
	Path  string
	Scope string
}

// Resolve expands path into the ordered list of files it names. Absolute
// and relative paths may name a directory, recursively loading every
// *.can beneath it; a scope-dotted path always names one file under
// IncludeDir.
func (l *Loader) Resolve(path string) ([]File, error) {
	if real, scope, ok := l.scopeDotted(path); ok {
		return l.resolveOne(real, scope)
	}

	bare := l.filesystemPath(path)
	if info, err := os.Stat(bare); err == nil && info.IsDir() {
		return l.walkDir(bare)
	}

	return l.resolveOne(withDefaultExt(bare), relativeScope(path))
}

func (l *Loader) resolveOne(real, scope string) ([]File, error) {
	if _, err := os.Stat(real); err != nil {
		return nil, err
	}
	if scope == "" {
		scope = scopeStem(real)
	}
	return []File{{Path: real, Scope: scope}}, nil
}

func (l *Loader) walkDir(root string) ([]File, error) {
	rootName := filepath.Base(root)
	var files []File
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(p) != scriptExt {
			return nil
		}
		rel, relErr := filepath.Rel(root, p)
		if relErr != nil {
			return relErr
		}
		files = append(files, File{Path: p, Scope: scopeFromRelative(rootName, rel)})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// scopeDotted recognizes load()'s third form: a bare name with no path
// separator, containing at least one '.' not acting as a
// literal ".can" suffix, resolved under IncludeDir with dots standing in
// for directory separators ("math.trig" -> include/math/trig.can). The
// dotted name itself is the derived scope.
func (l *Loader) scopeDotted(path string) (real, scope string, ok bool) {
	if filepath.IsAbs(path) || strings.ContainsAny(path, `/\`) || strings.HasPrefix(path, ".") {
		return "", "", false
	}
	if !strings.Contains(path, ".") || strings.HasSuffix(path, scriptExt) {
		return "", "", false
	}
	segments := strings.Split(path, ".")
	real = filepath.Join(l.IncludeDir, filepath.Join(segments...)+scriptExt)
	return real, path, true
}

// filesystemPath resolves an absolute or relative path (forms 1 and 2)
// to its real location, without assuming file vs. directory or
// appending scriptExt — that is decided by the caller once it knows
// whether the result is a directory.
func (l *Loader) filesystemPath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(l.BaseDir, path)
}

// relativeScope derives the dotted scope name for a directly-named file
// (not found via directory recursion): the path as given, separators
// replaced with dots, extension stripped. A bare single-segment name
// ("trig", no separator) reduces to itself.
func relativeScope(path string) string {
	if filepath.IsAbs(path) {
		return ""
	}
	rel := strings.TrimSuffix(filepath.ToSlash(path), scriptExt)
	rel = strings.TrimPrefix(rel, "./")
	if rel == "" || rel == "." {
		return ""
	}
	return strings.ReplaceAll(rel, "/", ".")
}

func withDefaultExt(path string) string {
	if filepath.Ext(path) == "" {
		return path + scriptExt
	}
	return path
}

// scopeStem derives a scope name from a single file's own base name,
// extension stripped. Used when relativeScope can't name one (an
// absolute path has no meaningful root within the scope namespace).
func scopeStem(path string) string {
	return strings.TrimSuffix(filepath.Base(path), scriptExt)
}

// scopeFromRelative builds the dotted scope name for a file at rel
// (slash-separated, relative to a directory named rootName that was
// itself the root of a recursive load): the root's own name becomes the
// leading segment, each path component after it one more segment.
func scopeFromRelative(rootName, rel string) string {
	rel = strings.TrimSuffix(filepath.ToSlash(rel), scriptExt)
	parts := strings.Split(rel, "/")
	return strings.Join(append([]string{rootName}, parts...), ".")
}
