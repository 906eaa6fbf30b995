package testing

import (
	"github.com/dargueta/tydos"
	"github.com/dargueta/tydos/memory"
)

// ReadRequest is one call to [tydos.SectorReader.ReadSectors].
type ReadRequest struct {
	Sector uint
	Count  uint
	Dest   memory.Address
}

// RecordingDisk wraps a sector reader and records every request made to it.
type RecordingDisk struct {
	Disk     tydos.SectorReader
	Requests []ReadRequest
	// Fail, if not nil, is called before each request is forwarded. A non-nil
	// return value fails the request without forwarding it.
	Fail func(request ReadRequest) error
}

func (d *RecordingDisk) ReadSectors(sector uint, count uint, dest memory.Address) error {
	request := ReadRequest{Sector: sector, Count: count, Dest: dest}
	d.Requests = append(d.Requests, request)

	if d.Fail != nil {
		err := d.Fail(request)
		if err != nil {
			return err
		}
	}
	return d.Disk.ReadSectors(sector, count, dest)
}

// Reset forgets all recorded requests.
func (d *RecordingDisk) Reset() {
	d.Requests = nil
}
