// Package filesystem provides a MenuSource backed by JSON files on disk
package filesystem

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/alchemorsel/menupairing/internal/domain/menu"
	"github.com/alchemorsel/menupairing/internal/ports/outbound"
	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var restaurantIDPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// Config configures the repository
type Config struct {
	Dir string
	// Watch evicts cached snapshots when their file changes
	Watch bool
}

// MenuRepository loads restaurant snapshots from <dir>/<restaurant-id>.json
type MenuRepository struct {
	dir       string
	validator *validator.Validate
	logger    *zap.Logger

	mutex sync.RWMutex
	cache map[string]*menu.Snapshot

	// generations counts evictions per restaurant. A read that started
	// before an eviction must not populate the cache.
	generations map[string]uint64
	readFile    func(name string) ([]byte, error)

	watcher *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup
}

var _ outbound.MenuSource = (*MenuRepository)(nil)

// NewMenuRepository creates a repository rooted at cfg.Dir
func NewMenuRepository(cfg Config, logger *zap.Logger) (*MenuRepository, error) {
	info, err := os.Stat(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("menu directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("menu directory: %s is not a directory", cfg.Dir)
	}

	r := &MenuRepository{
		dir:         cfg.Dir,
		validator:   validator.New(),
		logger:      logger.Named("menu-repository"),
		cache:       make(map[string]*menu.Snapshot),
		generations: make(map[string]uint64),
		readFile:    os.ReadFile,
		done:        make(chan struct{}),
	}

	if cfg.Watch {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return nil, fmt.Errorf("failed to create file watcher: %w", err)
		}
		if err := watcher.Add(cfg.Dir); err != nil {
			watcher.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", cfg.Dir, err)
		}
		r.watcher = watcher
		r.wg.Add(1)
		go r.watchLoop()
	}

	r.logger.Info("Menu repository initialized",
		zap.String("dir", cfg.Dir),
		zap.Bool("watch", cfg.Watch))

	return r, nil
}

// File format
type snapshotDTO struct {
	Restaurant restaurantDTO `json:"restaurant"`
	Menu       *menuDTO      `json:"menu" validate:"required"`
}

type restaurantDTO struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Location    string `json:"location"`
	CuisineType string `json:"cuisine_type"`
}

type menuDTO struct {
	Appetizers []itemDTO `json:"appetizers" validate:"dive"`
	Mains      []itemDTO `json:"mains" validate:"dive"`
	Desserts   []itemDTO `json:"desserts" validate:"dive"`
	Wines      []itemDTO `json:"wines" validate:"dive"`
	Cocktails  []itemDTO `json:"cocktails" validate:"dive"`
}

type itemDTO struct {
	ID          string   `json:"id" validate:"required"`
	Name        string   `json:"name" validate:"required"`
	Price       *float64 `json:"price" validate:"required,gte=0"`
	Description string   `json:"description"`
	Dietary     []string `json:"dietary" validate:"dive,required"`
	Category    string   `json:"category" validate:"required,oneof=appetizer main dessert wine cocktail"`
}

// Load returns the snapshot for restaurantID, reading it from disk on first use
func (r *MenuRepository) Load(ctx context.Context, restaurantID string) (*menu.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !restaurantIDPattern.MatchString(restaurantID) {
		return nil, fmt.Errorf("%w: invalid restaurant id %q", outbound.ErrRestaurantNotFound, restaurantID)
	}

	r.mutex.RLock()
	snap, ok := r.cache[restaurantID]
	generation := r.generations[restaurantID]
	r.mutex.RUnlock()
	if ok {
		return snap, nil
	}

	snap, err := r.read(restaurantID)
	if err != nil {
		return nil, err
	}

	r.mutex.Lock()
	if r.generations[restaurantID] == generation {
		r.cache[restaurantID] = snap
	}
	r.mutex.Unlock()

	r.logger.Debug("Menu loaded",
		zap.String("restaurant_id", restaurantID),
		zap.Int("items", snap.Menu.Len()))

	return snap, nil
}

// Evict drops a cached snapshot so the next Load rereads it
func (r *MenuRepository) Evict(restaurantID string) {
	r.mutex.Lock()
	delete(r.cache, restaurantID)
	r.generations[restaurantID]++
	r.mutex.Unlock()
}

// Close stops the watcher
func (r *MenuRepository) Close() error {
	if r.watcher == nil {
		return nil
	}
	select {
	case <-r.done:
		return nil
	default:
	}
	close(r.done)
	err := r.watcher.Close()
	r.wg.Wait()
	return err
}

func (r *MenuRepository) read(restaurantID string) (*menu.Snapshot, error) {
	data, err := r.readFile(filepath.Join(r.dir, restaurantID+".json"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", outbound.ErrRestaurantNotFound, restaurantID)
		}
		return nil, fmt.Errorf("failed to read menu %s: %w", restaurantID, err)
	}

	var dto snapshotDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", outbound.ErrInvalidMenu, restaurantID, err)
	}
	if err := r.validator.Struct(dto); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", outbound.ErrInvalidMenu, restaurantID, err)
	}

	snap, err := dto.toDomain()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", outbound.ErrInvalidMenu, restaurantID, err)
	}
	return snap, nil
}

func (d snapshotDTO) toDomain() (*menu.Snapshot, error) {
	restaurant := menu.Restaurant{
		Name:        d.Restaurant.Name,
		Description: d.Restaurant.Description,
		Location:    d.Restaurant.Location,
		CuisineType: d.Restaurant.CuisineType,
	}
	if err := restaurant.Validate(); err != nil {
		return nil, err
	}

	var sections menu.Sections
	var err error
	if sections.Appetizers, err = toItems(d.Menu.Appetizers); err != nil {
		return nil, err
	}
	if sections.Mains, err = toItems(d.Menu.Mains); err != nil {
		return nil, err
	}
	if sections.Desserts, err = toItems(d.Menu.Desserts); err != nil {
		return nil, err
	}
	if sections.Wines, err = toItems(d.Menu.Wines); err != nil {
		return nil, err
	}
	if sections.Cocktails, err = toItems(d.Menu.Cocktails); err != nil {
		return nil, err
	}

	m, err := menu.NewMenu(sections)
	if err != nil {
		return nil, err
	}
	return &menu.Snapshot{Restaurant: restaurant, Menu: m}, nil
}

func toItems(dtos []itemDTO) ([]*menu.MenuItem, error) {
	items := make([]*menu.MenuItem, 0, len(dtos))
	for _, d := range dtos {
		item, err := menu.NewMenuItem(d.ID, d.Name, *d.Price, d.Description, menu.Category(d.Category), d.Dietary...)
		if err != nil {
			return nil, fmt.Errorf("item %s: %w", d.ID, err)
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *MenuRepository) watchLoop() {
	defer r.wg.Done()
	for {
		select {
		case <-r.done:
			return

		case event, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			r.handleEvent(event)

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
			r.logger.Warn("Menu watcher error", zap.Error(err))
		}
	}
}

func (r *MenuRepository) handleEvent(event fsnotify.Event) {
	name := filepath.Base(event.Name)
	if filepath.Ext(name) != ".json" {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}

	id := strings.TrimSuffix(name, ".json")
	r.Evict(id)
	r.logger.Info("Menu changed, cache evicted",
		zap.String("restaurant_id", id),
		zap.String("op", event.Op.String()))
}
