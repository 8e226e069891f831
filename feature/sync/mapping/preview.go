package mapping

import (
	"context"
	"fmt"

	"douban2feishu/core/feishu"
	"douban2feishu/feature/sync/catalog"
	"douban2feishu/feature/sync/models"
)

// Match describes one catalog field that an actual resolve would bind to
// an existing remote column.
type Match struct {
	DomainName  string `json:"domainName"`
	DisplayName string `json:"displayName"`
	ColumnID    string `json:"columnId"`
}

// Creation describes one catalog field an actual resolve would create.
type Creation struct {
	DomainName  string `json:"domainName"`
	DisplayName string `json:"displayName"`
	Kind        string `json:"kind"`
}

// Preview is the dry-run result of a resolve: what would match and what
// would be created, with no side effects.
type Preview struct {
	WillMatch  []Match    `json:"willMatch"`
	WillCreate []Creation `json:"willCreate"`
}

// Preview performs a dry run of the resolver against the live table. It
// lists remote columns but never creates, persists, or caches anything,
// so operators can review schema changes before committing them.
func (r *Resolver) Preview(ctx context.Context, target models.TargetConfig) (*Preview, error) {
	fields := catalog.Fields(target.ContentType)

	remote, err := r.client.ListFields(ctx, target.Creds, target.AppToken, target.TableID)
	if err != nil {
		return nil, fmt.Errorf("failed to list remote columns: %w", err)
	}

	byName := make(map[string]feishu.Field, len(remote))
	for _, f := range remote {
		if _, dup := byName[f.Name]; !dup {
			byName[f.Name] = f
		}
	}

	preview := &Preview{}
	for _, f := range fields {
		if remoteField, ok := byName[f.DisplayName]; ok {
			preview.WillMatch = append(preview.WillMatch, Match{
				DomainName:  f.DomainName,
				DisplayName: f.DisplayName,
				ColumnID:    remoteField.ID,
			})
			continue
		}
		preview.WillCreate = append(preview.WillCreate, Creation{
			DomainName:  f.DomainName,
			DisplayName: f.DisplayName,
			Kind:        string(f.Kind),
		})
	}

	return preview, nil
}
