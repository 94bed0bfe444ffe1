// archive.go - "BRGR" resource archive reader
//
// The archive is a single already-materialized byte slice (§1: the core
// never touches CD-image/on-disk access itself) containing a 12-byte
// header, a table of group/resource headers, and raw resource payloads.
// Grounded on original_source/source/Base/ResourceMgr.cpp/.h.

package render

import (
	"fmt"
	"sort"
	"sync"
)

const archiveMagic = "BRGR"

// archiveOffsetMask strips the two reserved high bits (a fixed-handle bit
// and a spare bit) from a resource's stored offset.
const archiveOffsetMask = 0x3FFFFFFF

// ResourceInfo describes one numbered, typed resource within the archive.
type ResourceInfo struct {
	Number uint32
	Type   uint32
	Offset uint32
	Size   uint32
}

// Archive parses a BRGR resource archive and serves load-on-demand,
// free-on-request access to its resources. Loaded buffers are borrowed
// slices into the archive's own backing byte slice — no copy is made.
// mu guards the loaded set: prewarm.go decodes several textures from one
// archive concurrently, each doing its own Load/GetData/Free sequence.
type Archive struct {
	data           []byte
	resources      []ResourceInfo
	mu             sync.Mutex
	loaded         map[uint32]bool
	endResourceNum uint32
}

// EndResourceNum returns one past the highest resource number in the
// archive, matching ResourceMgr::getEndResourceNum.
func (a *Archive) EndResourceNum() uint32 {
	return a.endResourceNum
}

// OpenArchive parses the archive header and resource table. It fails with
// ErrArchiveCorrupt on a bad magic, a header that overruns the supplied
// buffer, or a resource payload that falls outside the buffer — all fatal
// at the startup/load boundary per spec.md §7.
func OpenArchive(data []byte) (*Archive, error) {
	s := NewByteStream(data)

	magic, err := s.ReadBytes(4)
	if err != nil || string(magic) != archiveMagic {
		return nil, fmt.Errorf("%w: bad magic", ErrArchiveCorrupt)
	}

	numGroups, err := s.ReadU32BE()
	if err != nil || numGroups == 0 {
		return nil, fmt.Errorf("%w: truncated or empty header", ErrArchiveCorrupt)
	}
	groupHeadersSize, err := s.ReadU32BE()
	if err != nil || groupHeadersSize == 0 {
		return nil, fmt.Errorf("%w: truncated or empty header", ErrArchiveCorrupt)
	}
	headersEnd := s.Pos() + int(groupHeadersSize)
	if uint64(headersEnd) > uint64(len(data)) {
		return nil, fmt.Errorf("%w: group headers overrun archive", ErrArchiveCorrupt)
	}

	// Groups are walked by bytes consumed against groupHeadersSize, not by
	// numGroups directly — the original reads group/resource headers out of
	// one flat buffer until it runs out, exactly as ResourceMgr::init does.
	var resources []ResourceInfo
	var endResourceNum uint32
	for headersEnd-s.Pos() >= 12 {
		resType, err := s.ReadU32BE()
		if err != nil {
			return nil, fmt.Errorf("%w: truncated group header", ErrArchiveCorrupt)
		}
		startNum, err := s.ReadU32BE()
		if err != nil {
			return nil, fmt.Errorf("%w: truncated group header", ErrArchiveCorrupt)
		}
		count, err := s.ReadU32BE()
		if err != nil {
			return nil, fmt.Errorf("%w: truncated group header", ErrArchiveCorrupt)
		}

		endNum := startNum + count
		if endNum > endResourceNum {
			endResourceNum = endNum
		}

		for i := uint32(0); i < count; i++ {
			if headersEnd-s.Pos() < 12 {
				return nil, fmt.Errorf("%w: ran out of resource header data", ErrArchiveCorrupt)
			}
			offset, err := s.ReadU32BE()
			if err != nil {
				return nil, fmt.Errorf("%w: truncated resource header", ErrArchiveCorrupt)
			}
			size, err := s.ReadU32BE()
			if err != nil {
				return nil, fmt.Errorf("%w: truncated resource header", ErrArchiveCorrupt)
			}
			if _, err := s.ReadU32BE(); err != nil { // unused field
				return nil, fmt.Errorf("%w: truncated resource header", ErrArchiveCorrupt)
			}

			// Burgerlib reserved the top two bits of the offset for a
			// fixed-handle flag; mask them off as the original does.
			offset &= archiveOffsetMask

			if uint64(offset)+uint64(size) > uint64(len(data)) {
				return nil, fmt.Errorf("%w: resource payload overruns archive", ErrArchiveCorrupt)
			}

			resources = append(resources, ResourceInfo{
				Number: startNum + i,
				Type:   resType,
				Offset: offset,
				Size:   size,
			})
		}
	}

	sort.Slice(resources, func(i, j int) bool {
		return resources[i].Number < resources[j].Number
	})

	return &Archive{
		data:           data,
		resources:      resources,
		loaded:         make(map[uint32]bool),
		endResourceNum: endResourceNum,
	}, nil
}

// find performs a binary search for a resource by number; the table is kept
// sorted by OpenArchive so this is always valid.
func (a *Archive) find(num uint32) (ResourceInfo, bool) {
	i := sort.Search(len(a.resources), func(i int) bool {
		return a.resources[i].Number >= num
	})
	if i < len(a.resources) && a.resources[i].Number == num {
		return a.resources[i], true
	}
	return ResourceInfo{}, false
}

// Load marks a resource as in-use and returns it, erroring if the number is
// unknown. It is idempotent: calling Load again before Free is a no-op.
func (a *Archive) Load(num uint32) error {
	if _, ok := a.find(num); !ok {
		return fmt.Errorf("%w: resource %d", ErrResourceNotFound, num)
	}
	a.mu.Lock()
	a.loaded[num] = true
	a.mu.Unlock()
	return nil
}

// GetData borrows the resource's payload slice, or nil if it has not been
// loaded (or does not exist). The returned slice aliases the archive's own
// backing buffer and must not be retained past the archive's lifetime.
func (a *Archive) GetData(num uint32) []byte {
	a.mu.Lock()
	loaded := a.loaded[num]
	a.mu.Unlock()
	if !loaded {
		return nil
	}
	info, ok := a.find(num)
	if !ok {
		return nil
	}
	return a.data[info.Offset : info.Offset+info.Size]
}

// Free states intent to discard a loaded resource. Implementations may keep
// the data cached since it is only a borrowed view into the archive buffer;
// this call simply clears the loaded bit so a subsequent Load re-validates.
func (a *Archive) Free(num uint32) {
	a.mu.Lock()
	delete(a.loaded, num)
	a.mu.Unlock()
}

// Resource returns the table entry for a resource number, if it exists.
func (a *Archive) Resource(num uint32) (ResourceInfo, bool) {
	return a.find(num)
}

// Resources returns the full, number-sorted resource table.
func (a *Archive) Resources() []ResourceInfo {
	return a.resources
}
