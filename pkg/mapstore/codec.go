package mapstore

import (
	"encoding/json"
	"time"

	"github.com/orneryd/cmap2/pkg/cmap"
)

// snapshotRecord is the on-disk encoding of a cmap.Snapshot. encoding/json
// marshals map[uint32]uint32 keys as decimal strings and round-trips them
// back to integers on Unmarshal, so cmap.Snapshot's Beta1/Beta2/Vertices
// maps need no further transformation; this wrapper just adds the metadata
// a resuming job wants (when the checkpoint was taken, how many darts it
// covers) alongside the snapshot payload itself.
type snapshotRecord struct {
	SavedAtUnix int64         `json:"saved_at_unix"`
	DartCount   int           `json:"dart_count"`
	Snapshot    cmap.Snapshot `json:"snapshot"`
}

func encodeSnapshot(snap cmap.Snapshot, savedAt time.Time) ([]byte, error) {
	rec := snapshotRecord{
		SavedAtUnix: savedAt.Unix(),
		DartCount:   len(snap.Used),
		Snapshot:    snap,
	}
	return json.Marshal(rec)
}

func decodeSnapshot(data []byte) (cmap.Snapshot, time.Time, error) {
	var rec snapshotRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return cmap.Snapshot{}, time.Time{}, err
	}
	return rec.Snapshot, time.Unix(rec.SavedAtUnix, 0), nil
}
