package backend

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// CacheMode controls where the excelize model keeps unzipped worksheet XML.
type CacheMode string

const (
	// CacheNone keeps the library defaults.
	CacheNone CacheMode = "none"
	// CacheMemory keeps every worksheet in memory.
	CacheMemory CacheMode = "memory"
	// CacheDisk spills every worksheet to the system temp directory.
	CacheDisk CacheMode = "disk"
)

// ParseCacheMode parses a cache mode name. An empty string means CacheNone.
func ParseCacheMode(s string) (CacheMode, error) {
	switch m := CacheMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "", CacheNone:
		return CacheNone, nil
	case CacheMemory, CacheDisk:
		return m, nil
	default:
		return "", fmt.Errorf("unknown cache mode %q (expected none, memory or disk)", s)
	}
}

func (m CacheMode) excelizeOptions() excelize.Options {
	switch m {
	case CacheMemory:
		return excelize.Options{
			UnzipSizeLimit:    1 << 40,
			UnzipXMLSizeLimit: 1 << 40,
		}
	case CacheDisk:
		return excelize.Options{UnzipXMLSizeLimit: 1}
	default:
		return excelize.Options{}
	}
}
