package acquire

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"gpsys/internal/config"
	"gpsys/internal/util"
)

// The publications page lists several download cards per month; only the one
// whose title carries both markers holds the per-practice CSV extracts.
const (
	annexMarker  = "Annex 1"
	formatMarker = "CSV"
)

var ErrNoDownloadLink = errors.New("no matching download link")

type Fetcher struct {
	cfg        config.Config
	httpClient *http.Client
}

func NewFetcher(cfg config.Config) *Fetcher {
	return &Fetcher{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Duration(cfg.DownloadTimeoutMs) * time.Millisecond},
	}
}

// Fetch downloads and extracts the raw archive for a month, returning the
// extraction directory. overrideURL bypasses publications-page resolution.
func (f *Fetcher) Fetch(ctx context.Context, month, overrideURL string) (string, error) {
	downloadURL := overrideURL
	if downloadURL == "" {
		resolved, err := f.ResolveDownloadURL(ctx, month)
		if err != nil {
			return "", err
		}
		downloadURL = resolved
	} else {
		fmt.Printf("skipping link resolution, using provided archive url: %s\n", downloadURL)
	}

	zipPath, err := f.download(ctx, month, downloadURL)
	if err != nil {
		return "", err
	}

	extractDir := filepath.Join(f.cfg.TmpDir, month)
	if err := os.RemoveAll(extractDir); err != nil {
		return "", err
	}
	if err := extractZip(zipPath, extractDir); err != nil {
		return "", fmt.Errorf("extracting %s: %w", zipPath, err)
	}
	fmt.Printf("extracted archive to %s\n", extractDir)

	return extractDir, nil
}

// ResolveDownloadURL scrapes the publications page for the month and returns
// the single download link matching the annex and format markers. Zero or
// multiple matches is an error, never a silent choice.
func (f *Fetcher) ResolveDownloadURL(ctx context.Context, month string) (string, error) {
	monthName, year, err := util.MonthAndYear(month)
	if err != nil {
		return "", err
	}
	pageURL := fmt.Sprintf("%s/%s-%s", strings.TrimRight(f.cfg.PublicationsBaseURL, "/"), monthName, year)
	fmt.Printf("finding download link for %s from %s\n", month, pageURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("publications page %s: status %d", pageURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", err
	}

	cards := doc.Find("div.nhsd-m-download-card")
	links := []string{}
	cards.Each(func(_ int, card *goquery.Selection) {
		title := strings.TrimSpace(card.Find("p").First().Text())
		if !strings.Contains(title, annexMarker) || !strings.Contains(title, formatMarker) {
			return
		}
		if href, ok := card.Find("a").First().Attr("href"); ok && strings.TrimSpace(href) != "" {
			links = append(links, strings.TrimSpace(href))
		}
	})

	switch len(links) {
	case 1:
		return resolveHref(pageURL, links[0])
	case 0:
		if cards.Length() == 0 {
			return "", fmt.Errorf("%w: no download cards on %s", ErrNoDownloadLink, pageURL)
		}
		return "", fmt.Errorf("%w: %d download cards on %s, none titled %q %q", ErrNoDownloadLink, cards.Length(), pageURL, annexMarker, formatMarker)
	default:
		return "", fmt.Errorf("ambiguous download link: %d cards on %s match %q %q", len(links), pageURL, annexMarker, formatMarker)
	}
}

func (f *Fetcher) download(ctx context.Context, month, downloadURL string) (string, error) {
	if err := os.MkdirAll(f.cfg.TmpDir, 0o755); err != nil {
		return "", err
	}

	fmt.Printf("downloading archive from %s\n", downloadURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("archive download %s: status %d", downloadURL, resp.StatusCode)
	}

	zipPath := filepath.Join(f.cfg.TmpDir, month+".zip")
	out, err := os.Create(zipPath)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		_ = out.Close()
		return "", fmt.Errorf("writing %s: %w", zipPath, err)
	}
	if err := out.Close(); err != nil {
		return "", err
	}

	fmt.Printf("downloaded archive to %s\n", zipPath)
	return zipPath, nil
}

// Cleanup removes the archive and extraction directory for a month once the
// normalized output has been persisted.
func (f *Fetcher) Cleanup(month string) error {
	zipPath := filepath.Join(f.cfg.TmpDir, month+".zip")
	if err := os.Remove(zipPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	if err := os.RemoveAll(filepath.Join(f.cfg.TmpDir, month)); err != nil {
		return err
	}
	fmt.Printf("removed temporary files for %s\n", month)
	return nil
}

func resolveHref(pageURL, href string) (string, error) {
	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("bad download href %q: %w", href, err)
	}
	if ref.IsAbs() {
		return href, nil
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(ref).String(), nil
}

func extractZip(zipPath, destDir string) error {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return err
	}

	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, file := range r.File {
		target := filepath.Join(destDir, filepath.Clean(file.Name))
		if !strings.HasPrefix(target, filepath.Clean(destDir)+string(os.PathSeparator)) {
			return fmt.Errorf("archive entry escapes extraction dir: %s", file.Name)
		}
		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		if err := extractZipFile(file, target); err != nil {
			return err
		}
	}
	return nil
}

func extractZipFile(file *zip.File, target string) error {
	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.Create(target)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, src); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
