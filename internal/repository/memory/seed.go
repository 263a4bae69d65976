package memory

import (
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/iliyamo/tenant-booking/internal/model"
)

// Seed is the on-disk format of the resources a memory store starts with.
type Seed struct {
	Spaces []model.Space `json:"spaces"`
	Tables []model.Table `json:"tables"`
}

// Load registers every resource read from r.  Resources must carry an id
// and a tenant.
func (s *Store) Load(r io.Reader) error {
	var seed Seed
	if err := json.NewDecoder(r).Decode(&seed); err != nil {
		return errors.Wrap(err, "decode seed")
	}
	for _, sp := range seed.Spaces {
		if sp.ID == 0 || sp.TenantID == 0 {
			return errors.Errorf("seed space %q: id and tenant_id are required", sp.Name)
		}
	}
	for _, t := range seed.Tables {
		if t.ID == 0 || t.TenantID == 0 {
			return errors.Errorf("seed table %q: id and tenant_id are required", t.Label)
		}
	}
	for _, sp := range seed.Spaces {
		s.PutSpace(sp)
	}
	for _, t := range seed.Tables {
		s.PutTable(t)
	}
	return nil
}

// LoadFile reads a seed from path.
func (s *Store) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "open seed")
	}
	defer f.Close()
	return s.Load(f)
}
