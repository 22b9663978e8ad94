package notifications

import (
	"context"
	"fmt"
	"strings"
)

// Recipient is one account a role-wide fan-out reaches.
type Recipient struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

// RecipientDirectory resolves the accounts that belong to a role.
type RecipientDirectory interface {
	Recipients(ctx context.Context, role Role) ([]Recipient, error)
}

// DirectoryFunc adapts a function to RecipientDirectory.
type DirectoryFunc func(ctx context.Context, role Role) ([]Recipient, error)

func (f DirectoryFunc) Recipients(ctx context.Context, role Role) ([]Recipient, error) {
	return f(ctx, role)
}

// StaticDirectory is a fixed role to recipients table.
type StaticDirectory map[Role][]Recipient

func (d StaticDirectory) Recipients(_ context.Context, role Role) ([]Recipient, error) {
	out := make([]Recipient, len(d[role]))
	copy(out, d[role])
	return out, nil
}

// ParseStaticDirectory reads the compact form used in configuration:
//
//	admin=7:ops@example.com,9;mentor=3
//
// Roles are separated by ";", recipients by ",", and an optional email
// follows the id after ":".
func ParseStaticDirectory(s string) (StaticDirectory, error) {
	dir := StaticDirectory{}
	for entry := range strings.SplitSeq(s, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		rawRole, list, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, fmt.Errorf("directory entry %q: missing '='", entry)
		}
		role, err := ParseRole(rawRole)
		if err != nil {
			return nil, fmt.Errorf("directory entry %q: %w", entry, err)
		}
		for item := range strings.SplitSeq(list, ",") {
			item = strings.TrimSpace(item)
			if item == "" {
				continue
			}
			id, addr, _ := strings.Cut(item, ":")
			id = strings.TrimSpace(id)
			if id == "" {
				return nil, fmt.Errorf("directory entry %q: empty recipient id", entry)
			}
			dir[role] = append(dir[role], Recipient{ID: id, Email: strings.TrimSpace(addr)})
		}
	}
	return dir, nil
}
