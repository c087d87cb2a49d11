package hub

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"hubview/internal/logging"
	"hubview/internal/registry"
	"hubview/internal/types"
)

// Commander issues one command and decodes its result.
type Commander interface {
	Do(ctx context.Context, cmd Command, out any) error
}

// Snapshot is the full registry read at start-up. Entities are already
// filtered to the visible set.
type Snapshot struct {
	Config   types.Config
	Icons    types.IconCatalog
	Entities []types.Entity
	Areas    []types.Area
	Devices  []types.Device
	States   []types.State
}

type IconQuery struct {
	Category    string
	Integration string
}

// IconQueries lists the icon catalog requests for cfg: the generic component
// catalog first, then one per integration.
func IconQueries(cfg types.Config) []IconQuery {
	queries := []IconQuery{{Category: IconCategoryEntityComponent}}
	for _, integration := range Integrations(cfg.Components) {
		queries = append(queries, IconQuery{Category: IconCategoryEntity, Integration: integration})
	}
	return queries
}

// Integrations reduces loaded components ("light.hue", "hue") to their
// distinct integration names, sorted.
func Integrations(components []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(components))
	for _, component := range components {
		name, _, _ := strings.Cut(strings.TrimSpace(component), ".")
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// LoadSnapshot runs the start-up sequence. The first failing step aborts the
// load with *StartupError.
func LoadSnapshot(ctx context.Context, c Commander, logger logging.Logger) (*Snapshot, error) {
	logger = logging.OrNop(logger)
	snap := &Snapshot{}

	if err := c.Do(ctx, GetConfig(), &snap.Config); err != nil {
		return nil, &StartupError{Step: CommandGetConfig, Err: err}
	}
	icons, err := loadIcons(ctx, c, IconQueries(snap.Config))
	if err != nil {
		return nil, err
	}
	snap.Icons = icons

	var entities []types.Entity
	if err := c.Do(ctx, ListEntities(), &entities); err != nil {
		return nil, &StartupError{Step: CommandListEntities, Err: err}
	}
	snap.Entities = registry.FilterVisible(entities)

	if err := c.Do(ctx, ListAreas(), &snap.Areas); err != nil {
		return nil, &StartupError{Step: CommandListAreas, Err: err}
	}
	if err := c.Do(ctx, ListDevices(), &snap.Devices); err != nil {
		return nil, &StartupError{Step: CommandListDevices, Err: err}
	}
	if err := c.Do(ctx, GetStates(), &snap.States); err != nil {
		return nil, &StartupError{Step: CommandGetStates, Err: err}
	}

	logger.Info("hub_snapshot_loaded",
		logging.F("entities", len(entities)),
		logging.F("visible", len(snap.Entities)),
		logging.F("areas", len(snap.Areas)),
		logging.F("devices", len(snap.Devices)),
		logging.F("states", len(snap.States)),
		logging.F("icon_domains", len(snap.Icons.Domains)),
		logging.F("icon_integrations", len(snap.Icons.Entities)),
	)
	return snap, nil
}

// loadIcons fetches every catalog in query order. entity_component replies
// fill Domains; entity replies fill Entities. A later bundle for the same key
// replaces an earlier one.
func loadIcons(ctx context.Context, c Commander, queries []IconQuery) (types.IconCatalog, error) {
	catalog := types.IconCatalog{Domains: types.DomainIcons{}, Entities: types.EntityIcons{}}
	for _, query := range queries {
		var err error
		if query.Category == IconCategoryEntity {
			var result types.EntityIconsResult
			if err = c.Do(ctx, GetIcons(query.Category, query.Integration), &result); err == nil {
				for integration, domains := range result.Resources {
					if catalog.Entities[integration] == nil {
						catalog.Entities[integration] = types.DomainIcons{}
					}
					mergeIcons(catalog.Entities[integration], domains)
				}
			}
		} else {
			var result types.ComponentIconsResult
			if err = c.Do(ctx, GetIcons(query.Category, query.Integration), &result); err == nil {
				mergeIcons(catalog.Domains, result.Resources)
			}
		}
		if err != nil {
			step := CommandGetIcons + " " + query.Category
			if query.Integration != "" {
				step = fmt.Sprintf("%s/%s", step, query.Integration)
			}
			return types.IconCatalog{}, &StartupError{Step: step, Err: err}
		}
	}
	return catalog, nil
}

func mergeIcons(dst, src types.DomainIcons) {
	for domain, resources := range src {
		for key, resource := range resources {
			if resource.Default == "" && len(resource.State) == 0 {
				continue
			}
			if dst[domain] == nil {
				dst[domain] = types.IconResources{}
			}
			dst[domain][key] = resource
		}
	}
}
