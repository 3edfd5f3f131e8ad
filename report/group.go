package report

import "github.com/weiihann/sheetbench/results"

// ByCase maps case key to library to record.
type ByCase map[string]map[string]*results.Record

// Cases returns the case keys in natural order.
func (g ByCase) Cases() []string {
	keys := make([]string, 0, len(g))
	for k := range g {
		keys = append(keys, k)
	}

	sortNatural(keys)

	return keys
}

// Libraries returns every library present in g, in natural order.
func (g ByCase) Libraries() []string {
	seen := make(map[string]bool)

	var libs []string

	for _, byLib := range g {
		for lib := range byLib {
			if !seen[lib] {
				seen[lib] = true
				libs = append(libs, lib)
			}
		}
	}

	sortNatural(libs)

	return libs
}

func (g ByCase) add(rec *results.Record) {
	key := rec.CaseKey()

	byLib, ok := g[key]
	if !ok {
		byLib = make(map[string]*results.Record)
		g[key] = byLib
	}

	// Later records replace earlier ones.
	byLib[rec.Library] = rec
}

// Split partitions records by mode. Records with any other mode are
// dropped.
func Split(recs []results.Record) (write, read []results.Record) {
	for _, r := range recs {
		switch r.Mode {
		case results.ModeWrite:
			write = append(write, r)
		case results.ModeRead:
			read = append(read, r)
		}
	}

	return write, read
}

// GroupWrite groups write records by case then library.
func GroupWrite(recs []results.Record) ByCase {
	g := make(ByCase)

	for i := range recs {
		g.add(&recs[i])
	}

	return g
}

// GroupRead groups read records by origin writer, then case, then library.
func GroupRead(recs []results.Record) map[string]ByCase {
	groups := make(map[string]ByCase)

	for i := range recs {
		writer := recs[i].OriginWriter
		if writer == "" {
			writer = "unknown"
		}

		g, ok := groups[writer]
		if !ok {
			g = make(ByCase)
			groups[writer] = g
		}

		g.add(&recs[i])
	}

	return groups
}

// Writers returns the origin writers of groups in natural order.
func Writers(groups map[string]ByCase) []string {
	writers := make([]string, 0, len(groups))
	for w := range groups {
		writers = append(writers, w)
	}

	sortNatural(writers)

	return writers
}
