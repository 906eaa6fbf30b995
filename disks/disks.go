// Package disks contains definitions of the drive geometries the BIOS disk
// service can be asked to emulate.
package disks

import (
	_ "embed"
	"fmt"
	"sort"

	"github.com/gocarina/gocsv"
)

// DefaultSlug is the slug of the geometry used when none is given.
const DefaultSlug = "fd1440"

// MaxSectorsPerTrack is the largest sector number that fits into the six bits
// the BIOS read service has for it.
const MaxSectorsPerTrack = 63

type DiskGeometry struct {
	Slug       string `csv:"slug"`
	Name       string `csv:"name"`
	FormFactor string `csv:"form_factor"`
	// BytesPerSector gives the size of a single sector. Every geometry the
	// kernel supports uses 512-byte sectors.
	BytesPerSector uint `csv:"bytes_per_sector"`
	// SectorsPerTrack is the number of sectors on one track of one head. The
	// kernel only reads from cylinder 0, head 0, so this is also the highest
	// sector number it can read.
	SectorsPerTrack uint `csv:"sectors_per_track"`
	// TotalDataTracks gives the number of data tracks per head.
	TotalDataTracks uint   `csv:"total_data_tracks"`
	Heads           uint   `csv:"heads"`
	Notes           string `csv:"notes"`
}

// TotalSectors gives the number of sectors on the entire device.
func (g *DiskGeometry) TotalSectors() uint {
	return g.SectorsPerTrack * g.TotalDataTracks * g.Heads
}

// TotalSizeBytes gives the size of the storage device in bytes. This is the
// size of a full image file for it.
func (g *DiskGeometry) TotalSizeBytes() int64 {
	return int64(g.TotalSectors()) * int64(g.BytesPerSector)
}

//go:embed disk-geometries.csv
var diskGeometriesRawCSV string
var diskGeometries map[string]DiskGeometry

// GetPredefinedDiskGeometry returns the geometry with the given slug.
func GetPredefinedDiskGeometry(slug string) (DiskGeometry, error) {
	geometry, ok := diskGeometries[slug]
	if ok {
		return geometry, nil
	}

	err := fmt.Errorf("no predefined disk geometry exists with slug %q", slug)
	return DiskGeometry{}, err
}

// Slugs returns the slugs of all predefined geometries, sorted.
func Slugs() []string {
	slugs := make([]string, 0, len(diskGeometries))
	for slug := range diskGeometries {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	return slugs
}

func init() {
	var rows []DiskGeometry
	err := gocsv.UnmarshalString(diskGeometriesRawCSV, &rows)
	if err != nil {
		panic(fmt.Errorf("failed to decode disk geometries: %w", err))
	}

	diskGeometries = make(map[string]DiskGeometry, len(rows))
	for i, row := range rows {
		_, exists := diskGeometries[row.Slug]
		if exists {
			panic(
				fmt.Errorf(
					"duplicate definition for disk %q found on row %d", row.Slug, i+1))
		}
		if row.SectorsPerTrack == 0 || row.SectorsPerTrack > MaxSectorsPerTrack {
			panic(
				fmt.Errorf(
					"disk %q has %d sectors per track, must be in [1, %d]",
					row.Slug,
					row.SectorsPerTrack,
					MaxSectorsPerTrack))
		}
		diskGeometries[row.Slug] = row
	}
}
