package providers

import (
	"context"
	"fmt"

	"github.com/samber/do/v2"

	"github.com/nexogroup/nexo-server/internal/logger"
	"github.com/nexogroup/nexo-server/internal/search"
	"github.com/nexogroup/nexo-server/internal/store"
)

// SearchIndexHandle wraps the member index with shutdown capability.
type SearchIndexHandle struct {
	*search.MemberIndex
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the in-memory member directory index, filled
// from the database. The database stays the source of truth; the index is
// rebuilt on every start.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)

	index, err := search.NewMemberIndex(log.Logger)
	if err != nil {
		return nil, err
	}

	members, err := storeHandle.ListMembers(context.Background(), store.MemberFilter{})
	if err != nil {
		index.Close()
		return nil, fmt.Errorf("load members for index: %w", err)
	}
	if err := index.Rebuild(members); err != nil {
		index.Close()
		return nil, fmt.Errorf("rebuild member index: %w", err)
	}

	docCount, _ := index.Count()
	log.Info("Search index initialized", "documents", docCount)

	return &SearchIndexHandle{MemberIndex: index}, nil
}
