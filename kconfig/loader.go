package kconfig

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/klauspost/readahead"
)

// parser carries the transient state of one Load: the current file and
// position, the token list for the current line, and the stack of files
// suspended by source statements. It is discarded once the menu tree has
// been built.
type parser struct {
	cfg      *Config
	file     *srcFile
	stack    []fileFrame
	filename string
	line     string
	tokens   []token
	saved    string
	linenr   int
	toki     int

	// hasTokens marks the current token list as ungotten, so the next
	// nextLine call replays it instead of reading a line. hasSaved does
	// the same for a whole raw line, which help parsing needs since it
	// reads past the token layer.
	hasTokens bool
	hasSaved  bool
}

// fileFrame is a file suspended while one of its source statements is read.
type fileFrame struct {
	file     *srcFile
	filename string
	linenr   int
}

// srcFile is the complete text of one Kconfig source, consumed line by
// line. Files are slurped up front so line fetching never blocks on the
// disk mid-parse.
type srcFile struct {
	data string
	pos  int
}

// readLine returns the next line including its trailing newline, or "" at
// end of file.
func (f *srcFile) readLine() string {
	if f.pos >= len(f.data) {
		return ""
	}

	i := strings.IndexByte(f.data[f.pos:], '\n')
	if i < 0 {
		line := f.data[f.pos:]
		f.pos = len(f.data)

		return line
	}

	line := f.data[f.pos : f.pos+i+1]
	f.pos += i + 1

	return line
}

// slurp reads the whole file through a readahead pipeline, which overlaps
// disk reads with parsing of the text already fetched.
func slurp(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	ra := readahead.NewReader(f)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return "", err
	}

	return normalizeNewlines(string(data)), nil
}

// normalizeNewlines folds Windows and old Mac line endings into plain
// newlines, like universal newline mode when reading text files.
func normalizeNewlines(s string) string {
	if !strings.Contains(s, "\r") {
		return s
	}

	s = strings.ReplaceAll(s, "\r\n", "\n")

	return strings.ReplaceAll(s, "\r", "\n")
}

// openSource fetches the contents of one Kconfig file, consulting the
// overlay before the filesystem.
func (c *Config) openSource(path string) (string, error) {
	if content, ok := c.overlay[path]; ok {
		return normalizeNewlines(content), nil
	}

	return slurp(path)
}

// openTop opens the top Kconfig file, resolved against the overlay and
// then each srctree root in order.
func (p *parser) openTop(filename string) error {
	c := p.cfg

	if content, ok := c.overlay[filename]; ok {
		p.file = &srcFile{data: normalizeNewlines(content)}

		return nil
	}

	var firstErr error

	for _, root := range c.srctree {
		content, err := slurp(joinRoot(root, filename))
		if err == nil {
			p.file = &srcFile{data: content}

			return nil
		}

		if firstErr == nil {
			firstErr = err
		}
	}

	return &loadError{
		err: ErrOpenFile,
		detail: "\n" + fill(fmt.Sprintf("Could not open '%s' (%s)%s",
			filename, sysErrText(firstErr), c.srctreeHint()), 80),
	}
}

// enterFile suspends the current file and jumps to the beginning of a
// sourced one.
//
// full is the openable path. rel is the path with the srctree root
// stripped, which is what menu nodes record, so generated documentation
// and diagnostics read naturally. The two are equal for absolute paths.
func (p *parser) enterFile(full, rel string) error {
	p.stack = append(p.stack, fileFrame{
		file:     p.file,
		filename: p.filename,
		linenr:   p.linenr,
	})

	for _, fr := range p.stack {
		if fr.filename != rel {
			continue
		}

		backtrace := make([]string, 0, len(p.stack))
		for i := len(p.stack) - 1; i >= 0; i-- {
			backtrace = append(backtrace,
				fmt.Sprintf("%s:%d", p.stack[i].filename, p.stack[i].linenr))
		}

		return &loadError{
			err: ErrRecursiveSource,
			detail: fmt.Sprintf("\n%s:%d: Recursive 'source' of '%s' "+
				"detected. Check that environment variables are set "+
				"correctly.\nBacktrace:\n%s",
				p.filename, p.linenr, rel, strings.Join(backtrace, "\n")),
		}
	}

	content, err := p.cfg.openSource(full)
	if err != nil {
		return &loadError{
			err: ErrOpenFile,
			detail: fmt.Sprintf("%s:%d: Could not open '%s' (%s)",
				p.filename, p.linenr, full, sysErrText(err)),
		}
	}

	p.cfg.logger.Debug("sourcing file",
		slog.String("file", rel), slog.String("from", p.filename))

	p.file = &srcFile{data: content}
	p.filename = rel
	p.linenr = 0

	return nil
}

// leaveFile returns from a sourced file to the file that sourced it.
func (p *parser) leaveFile() {
	n := len(p.stack) - 1
	fr := p.stack[n]
	p.stack = p.stack[:n]

	p.file = fr.file
	p.filename = fr.filename
	p.linenr = fr.linenr
}

// sourcedFile pairs the openable path of a sourced file with the name it
// is recorded under in menu nodes.
type sourcedFile struct {
	full string
	rel  string
}

// resolveSource expands a source statement pattern into the files it
// names. Overlay entries are matched against the pattern as given. On the
// filesystem the pattern is globbed under each srctree root in turn, and
// the first root with matches wins. Matches are sorted so symbols keep a
// consistent order across runs, which indirectly keeps generated .config
// files stable.
func (p *parser) resolveSource(pattern string, isAbs bool) []sourcedFile {
	c := p.cfg

	var keys []string

	for key := range c.overlay {
		if ok, err := filepath.Match(pattern, key); err == nil && ok {
			keys = append(keys, key)
		}
	}

	if len(keys) > 0 {
		slices.Sort(keys)

		files := make([]sourcedFile, len(keys))
		for i, key := range keys {
			files[i] = sourcedFile{full: key, rel: key}
		}

		return files
	}

	for _, root := range c.srctree {
		matches, err := filepath.Glob(joinRoot(root, pattern))
		if err != nil || len(matches) == 0 {
			continue
		}

		slices.Sort(matches)

		files := make([]sourcedFile, len(matches))
		for i, m := range matches {
			rel := m
			if !isAbs {
				if r, err := filepath.Rel(root, m); err == nil {
					rel = r
				}
			}

			files[i] = sourcedFile{full: m, rel: rel}
		}

		return files
	}

	return nil
}

// openConfig opens a file in the .config format: first the overlay, then
// the path as given, then the path under each srctree root. It returns
// the contents along with the path that resolved.
func (c *Config) openConfig(filename string) (string, string, error) {
	if content, ok := c.overlay[filename]; ok {
		return normalizeNewlines(content), filename, nil
	}

	content, err := slurp(filename)
	if err == nil {
		return content, filename, nil
	}

	for _, root := range c.srctree {
		if root == "" {
			continue
		}

		joined := joinRoot(root, filename)

		content, err2 := slurp(joined)
		if err2 == nil {
			return content, joined, nil
		}

		err = err2
	}

	return "", "", &loadError{
		err: ErrOpenFile,
		detail: "\n" + fill(fmt.Sprintf("Could not open '%s' (%s)%s",
			filename, sysErrText(err), c.srctreeHint()), 80),
	}
}

// srctreeHint is appended to errors for files that cannot be found or
// opened, since a stale $srctree is the usual culprit.
func (c *Config) srctreeHint() string {
	roots := make([]string, 0, len(c.srctree))

	for _, root := range c.srctree {
		if root != "" {
			roots = append(roots, root)
		}
	}

	display := strings.Join(roots, ":")
	if display == "" {
		display = "unset or blank"
	}

	return fmt.Sprintf(". Perhaps the $srctree environment variable (set "+
		"to '%s') is set incorrectly. Note that the value of $srctree is "+
		"captured when the configuration is loaded (for consistency and "+
		"to cleanly separate instances).", display)
}

func joinRoot(root, path string) string {
	if root == "" {
		return path
	}

	return filepath.Join(root, path)
}

// sysErrText extracts the bare system error text, without the operation
// and path that PathError prepends, for messages that already name the
// file.
func sysErrText(err error) string {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return pathErr.Err.Error()
	}

	return err.Error()
}

// fill greedily wraps s to the given width, for long one-line messages.
func fill(s string, width int) string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return ""
	}

	var buf strings.Builder

	col := 0

	for i, word := range words {
		if i > 0 {
			if col+1+len(word) > width {
				buf.WriteByte('\n')

				col = 0
			} else {
				buf.WriteByte(' ')

				col++
			}
		}

		buf.WriteString(word)

		col += len(word)
	}

	return buf.String()
}

// nextLine fetches and tokenizes the next logical line from the current
// file, joining continuation lines. It reports false at end of file.
func (p *parser) nextLine() (bool, error) {
	var line string

	// saved provides a single line of unget, used by help parsing.
	if p.hasSaved {
		line = p.saved
		p.saved = ""
		p.hasSaved = false

		if line == "" {
			return false, nil
		}
	} else {
		line = p.file.readLine()
		if line == "" {
			return false, nil
		}

		p.linenr++
	}

	for strings.HasSuffix(line, "\\\n") {
		line = line[:len(line)-2] + p.file.readLine()
		p.linenr++
	}

	p.line = line

	tokens, err := p.tokenize(line)
	if err != nil {
		return false, err
	}

	p.tokens = tokens
	p.toki = -1

	return true, nil
}
