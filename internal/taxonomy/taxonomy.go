// Package taxonomy parses the FB2 genre transfer file (genres.xml) into the
// shape consumed by the genre merge.
package taxonomy

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
)

// Taxonomy is a parsed external genre source: main categories, each owning
// an ordered list of tagged subgenres.
type Taxonomy struct {
	Categories []Category
}

// Category is a main taxonomy node. It has no tag of its own.
type Category struct {
	Name        string
	Translation string
	Subgenres   []Subgenre
}

// Subgenre is a leaf taxonomy node carrying the tag that books reference.
type Subgenre struct {
	Tag         string
	Name        string
	Translation string
}

// SubgenreCount returns the total number of tagged subgenres in the source.
func (t *Taxonomy) SubgenreCount() int {
	n := 0
	for _, c := range t.Categories {
		n += len(c.Subgenres)
	}
	return n
}

// XML shapes of the FB2 genre transfer format.
type (
	xmlTransfer struct {
		XMLName xml.Name   `xml:"fbgenrestransfer"`
		Genres  []xmlGenre `xml:"genre"`
	}
	xmlGenre struct {
		Value     string        `xml:"value,attr"`
		Descrs    []xmlDescr    `xml:"root-descr"`
		Subgenres []xmlSubgenre `xml:"subgenres>subgenre"`
	}
	xmlSubgenre struct {
		Value  string     `xml:"value,attr"`
		Descrs []xmlDescr `xml:"genre-descr"`
	}
	xmlDescr struct {
		Lang  string `xml:"lang,attr"`
		Title string `xml:"genre-title,attr"`
	}
)

// Load parses a genres.xml file from disk.
func Load(path string) (*Taxonomy, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open taxonomy %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads the FB2 genre transfer XML.
func Parse(r io.Reader) (*Taxonomy, error) {
	var transfer xmlTransfer
	if err := xml.NewDecoder(r).Decode(&transfer); err != nil {
		return nil, fmt.Errorf("failed to parse taxonomy: %w", err)
	}

	tax := &Taxonomy{}
	for _, g := range transfer.Genres {
		if g.Value == "" {
			continue
		}
		cat := Category{
			Name:        titleFor(g.Descrs, "en"),
			Translation: titleFor(g.Descrs, "ru"),
		}
		if cat.Name == "" {
			cat.Name = g.Value
		}
		for _, s := range g.Subgenres {
			if s.Value == "" {
				continue
			}
			sub := Subgenre{
				Tag:         s.Value,
				Name:        titleFor(s.Descrs, "en"),
				Translation: titleFor(s.Descrs, "ru"),
			}
			if sub.Name == "" {
				sub.Name = s.Value
			}
			cat.Subgenres = append(cat.Subgenres, sub)
		}
		tax.Categories = append(tax.Categories, cat)
	}
	return tax, nil
}

// titleFor picks the title for a language, falling back to the first entry.
func titleFor(descrs []xmlDescr, lang string) string {
	for _, d := range descrs {
		if d.Lang == lang {
			return d.Title
		}
	}
	if len(descrs) > 0 {
		return descrs[0].Title
	}
	return ""
}
