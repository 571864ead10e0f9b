package content

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/vellum-docs/vellum/pkg/frontmatter"
)

// LoadPosts loads every post under dir, newest first.
func LoadPosts(dir string) ([]Post, error) {
	var posts []Post
	err := eachDocument(dir, func(path string, doc *frontmatter.Document) error {
		p := Post{Path: path, Body: doc.Body}
		if err := doc.Decode(&p); err != nil {
			return fmt.Errorf("post %s: %w", path, err)
		}
		if err := p.validate(); err != nil {
			return err
		}
		posts = append(posts, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(posts, func(i, j int) bool { return posts[i].Date.After(posts[j].Date) })
	return posts, nil
}

// LoadGuides loads every guide under dir, ordered by weight then title.
func LoadGuides(dir string) ([]Guide, error) {
	var guides []Guide
	err := eachDocument(dir, func(path string, doc *frontmatter.Document) error {
		g := Guide{Path: path, Body: doc.Body}
		if err := doc.Decode(&g); err != nil {
			return fmt.Errorf("guide %s: %w", path, err)
		}
		if err := g.validate(); err != nil {
			return err
		}
		guides = append(guides, g)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(guides, func(i, j int) bool {
		if guides[i].Weight != guides[j].Weight {
			return guides[i].Weight < guides[j].Weight
		}
		return guides[i].Title < guides[j].Title
	})
	return guides, nil
}

// LoadHighlights loads every release highlight under dir, ordered by
// release then title.
func LoadHighlights(dir string) ([]Highlight, error) {
	var highlights []Highlight
	err := eachDocument(dir, func(path string, doc *frontmatter.Document) error {
		h := Highlight{Path: path, Body: doc.Body}
		if err := doc.Decode(&h); err != nil {
			return fmt.Errorf("highlight %s: %w", path, err)
		}
		if err := h.validate(); err != nil {
			return err
		}
		highlights = append(highlights, h)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(highlights, func(i, j int) bool {
		if highlights[i].Release != highlights[j].Release {
			return highlights[i].Release < highlights[j].Release
		}
		return highlights[i].Title < highlights[j].Title
	})
	return highlights, nil
}

// ForRelease filters highlights belonging to one release version.
func ForRelease(highlights []Highlight, version string) []Highlight {
	var out []Highlight
	for _, h := range highlights {
		if h.Release == version {
			out = append(out, h)
		}
	}
	return out
}

// eachDocument parses every markdown file under dir. A missing
// directory is not an error: content sections are optional.
func eachDocument(dir string, fn func(path string, doc *frontmatter.Document) error) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil
	}

	matches, err := doublestar.FilepathGlob(filepath.Join(dir, "**", "*.md"))
	if err != nil {
		return fmt.Errorf("globbing %s: %w", dir, err)
	}
	sort.Strings(matches)

	for _, path := range matches {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("opening %s: %w", path, err)
		}
		doc, err := frontmatter.Parse(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if err := fn(path, doc); err != nil {
			return err
		}
	}
	return nil
}
