package report

import (
	"bytes"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/weiihann/sheetbench/results"
)

// ResultsExt is the extension of results files.
const ResultsExt = ".jsonl"

var safeFileName = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// FileInfo describes one results file in the results directory.
type FileInfo struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// ListResultFiles returns the results files in dir, newest first, larger
// first on equal modification times.
func ListResultFiles(dir string) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []FileInfo

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ResultsExt) {
			continue
		}

		info, err := e.Info()
		if err != nil {
			continue
		}

		files = append(files, FileInfo{Name: e.Name(), Size: info.Size(), ModTime: info.ModTime()})
	}

	sort.SliceStable(files, func(i, j int) bool {
		if !files[i].ModTime.Equal(files[j].ModTime) {
			return files[i].ModTime.After(files[j].ModTime)
		}

		return files[i].Size > files[j].Size
	})

	return files, nil
}

// SanitizeFileName returns name if it is a bare results file name made of
// safe characters, and "" otherwise.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if !safeFileName.MatchString(name) {
		return ""
	}

	if !strings.HasSuffix(strings.ToLower(name), ResultsExt) {
		return ""
	}

	return name
}

// Viewer serves the HTML report for the results files of one directory.
type Viewer struct {
	Dir     string
	Options Options
	Logger  *slog.Logger
}

func (v *Viewer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)

		return
	}

	if r.URL.Path != "/" {
		http.NotFound(w, r)

		return
	}

	q := r.URL.Query()

	opts := v.Options
	opts.HideMissing = q.Get("hide_missing") == "1"
	opts.HideFail = q.Get("hide_fail") == "1"

	files, err := ListResultFiles(v.Dir)
	if err != nil && !os.IsNotExist(err) {
		v.Logger.Error("list results", slog.String("dir", v.Dir), slog.String("error", err.Error()))
		http.Error(w, "cannot list results directory", http.StatusInternalServerError)

		return
	}

	page := &Page{
		Title:       "Benchmark results",
		Generated:   time.Now(),
		Files:       files,
		HideMissing: opts.HideMissing,
		HideFail:    opts.HideFail,
	}

	if selected := selectFile(files, q.Get("file")); selected != "" {
		page.Source = selected

		recs, skipped, err := results.ReadFile(filepath.Join(v.Dir, selected))
		if err != nil {
			v.Logger.Error("read results", slog.String("file", selected), slog.String("error", err.Error()))
			http.Error(w, "cannot read results file", http.StatusInternalServerError)

			return
		}

		if skipped > 0 {
			v.Logger.Debug("skipped malformed lines", slog.String("file", selected), slog.Int("lines", skipped))
		}

		page.Report = Build(recs, opts)
	}

	var buf bytes.Buffer
	if err := WriteHTML(&buf, page); err != nil {
		v.Logger.Error("render page", slog.String("error", err.Error()))
		http.Error(w, "cannot render report", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// selectFile returns the requested file when it is safe and present, else
// the newest file.
func selectFile(files []FileInfo, requested string) string {
	if name := SanitizeFileName(requested); name != "" {
		for _, f := range files {
			if f.Name == name {
				return name
			}
		}
	}

	if len(files) == 0 {
		return ""
	}

	return files[0].Name
}
