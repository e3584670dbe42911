package engine

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// LoadExternalDraw turns a previously saved set of groups into a finished
// session. It never touches any existing session; on error nothing is built.
func LoadExternalDraw(groups []Group, opts ...Option) (*Session, error) {
	if len(groups) != NumGroups {
		return nil, fmt.Errorf("%w: want %d groups, got %d", ErrInvalidExternalDraw, NumGroups, len(groups))
	}
	for i, g := range groups {
		if len(g.Teams) > GroupSize {
			return nil, fmt.Errorf("%w: group %d has %d teams", ErrInvalidExternalDraw, i, len(g.Teams))
		}
		for _, t := range g.Teams {
			if t.ID == "" {
				return nil, fmt.Errorf("%w: group %d has a team without id", ErrInvalidExternalDraw, i)
			}
		}
	}

	s := newSession(opts)
	s.Groups = CloneGroups(groups)
	for i := range s.Groups {
		if s.Groups[i].Name == "" {
			s.Groups[i].Name = GroupNames[i]
		}
	}
	s.PotIndex = NumPots
	s.Remaining = nil
	return s, nil
}

// EncodeShareHash renders groups in the legacy URL-fragment format:
// standard base64 over the JSON array of groups.
func EncodeShareHash(groups []Group) (string, error) {
	raw, err := json.Marshal(groups)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

func DecodeShareHash(hash string) ([]Group, error) {
	raw, err := base64.StdEncoding.DecodeString(hash)
	if err != nil {
		raw, err = base64.RawStdEncoding.DecodeString(hash)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: bad share hash: %v", ErrInvalidExternalDraw, err)
	}
	var groups []Group
	if err := json.Unmarshal(raw, &groups); err != nil {
		return nil, fmt.Errorf("%w: bad share hash: %v", ErrInvalidExternalDraw, err)
	}
	return groups, nil
}
