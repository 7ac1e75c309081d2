package widget

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/perxlab/catalog-widget/internal/cart"
	"github.com/perxlab/catalog-widget/internal/catalog"
	"github.com/perxlab/catalog-widget/internal/filter"
	pkgerrors "github.com/perxlab/catalog-widget/pkg/errors"
	"github.com/perxlab/catalog-widget/pkg/logger"
)

// Routes the widget can render.
const (
	RouteHome    = "home"
	RouteCatalog = "catalog"
	RouteCart    = "cart"
)

// Config is the host embedding contract: a container (selector or direct
// reference) plus an optional dealer scope for the initial load.
type Config struct {
	Container string    `validate:"required_without=Target"`
	Target    Container `validate:"-"`
	Dealers   []string  `validate:"-"`
	Route     string    `validate:"omitempty,oneof=home catalog cart"`
}

// Params groups dependencies for a widget instance. Stores are constructed
// per instance: multiple embeds on one host never share state.
type Params struct {
	Registry *Registry
	Catalog  *catalog.Store
	Cart     *cart.Store
	Filter   *filter.Store
	Log      *logger.Logger
}

// Widget wires the stores together and renders the active route into the
// host container.
type Widget struct {
	mu        sync.Mutex
	id        string
	registry  *Registry
	catalog   *catalog.Store
	cart      *cart.Store
	filter    *filter.Store
	log       *logger.Logger
	container Container
	route     string
	unsubs    []func()
	mounted   bool
}

var validate = validator.New()

// New builds an unmounted widget.
func New(params Params) (*Widget, error) {
	if params.Registry == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "container registry is required")
	}
	if params.Catalog == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog store is required")
	}
	if params.Cart == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart store is required")
	}
	if params.Filter == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "filter store is required")
	}
	if params.Log == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &Widget{
		id:       uuid.NewString(),
		registry: params.Registry,
		catalog:  params.Catalog,
		cart:     params.Cart,
		filter:   params.Filter,
		log:      params.Log,
		route:    RouteHome,
	}, nil
}

// Mount resolves the container, wires the store reactions, triggers the
// initial dealer-scoped load, and renders the starting route.
func (w *Widget) Mount(ctx context.Context, cfg Config) error {
	if err := validate.Struct(cfg); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid widget config")
	}

	container := cfg.Target
	if container == nil {
		resolved, ok := w.registry.Resolve(cfg.Container)
		if !ok {
			return pkgerrors.New(pkgerrors.CodeContainerNotFound,
				fmt.Sprintf("container %q not found", cfg.Container))
		}
		container = resolved
	}

	w.mu.Lock()
	if w.mounted {
		w.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeValidation, "widget already mounted")
	}
	w.container = container
	w.mounted = true
	if cfg.Route != "" {
		w.route = cfg.Route
	}
	w.mu.Unlock()

	ctx = w.log.WithWidgetID(ctx, w.id)

	// Explicit reactions replacing observable tracking: filter changes drive
	// the derived catalog view; catalog changes drive cart reconciliation.
	unsubFilter := w.filter.Subscribe(func() {
		w.catalog.SetFilter(ctx, w.filter.DealerIDs())
	})
	unsubCatalog := w.catalog.Subscribe(func() {
		w.cart.AbsorbCatalog(ctx, w.catalog.Products())
		w.render(ctx)
	})
	unsubCart := w.cart.Subscribe(func() {
		w.render(ctx)
	})

	w.mu.Lock()
	w.unsubs = append(w.unsubs, unsubFilter, unsubCatalog, unsubCart)
	w.mu.Unlock()

	w.log.Info(ctx, "widget mounted")
	w.catalog.LoadCatalog(ctx, cfg.Dealers)
	w.render(ctx)
	return nil
}

// Navigate switches the rendered route.
func (w *Widget) Navigate(ctx context.Context, route string) error {
	switch route {
	case RouteHome, RouteCatalog, RouteCart:
	default:
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("unknown route %q", route))
	}
	w.mu.Lock()
	w.route = route
	w.mu.Unlock()
	w.render(w.log.WithRoute(w.log.WithWidgetID(ctx, w.id), route))
	return nil
}

// Route returns the currently rendered route.
func (w *Widget) Route() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.route
}

// ID returns the widget instance identifier.
func (w *Widget) ID() string {
	return w.id
}

// Destroy tears the widget down: reactions unsubscribe and the container is
// released. Safe to call more than once.
func (w *Widget) Destroy() error {
	w.mu.Lock()
	if !w.mounted {
		w.mu.Unlock()
		return nil
	}
	w.mounted = false
	unsubs := w.unsubs
	w.unsubs = nil
	container := w.container
	w.container = nil
	w.mu.Unlock()

	for _, unsub := range unsubs {
		unsub()
	}

	var err error
	if container != nil {
		err = multierr.Append(err, container.Release())
	}
	return err
}

func (w *Widget) render(ctx context.Context) {
	w.mu.Lock()
	container := w.container
	route := w.route
	mounted := w.mounted
	w.mu.Unlock()

	if !mounted || container == nil {
		return
	}
	if err := container.Render(w.buildView(route)); err != nil {
		w.log.Warn(ctx, "rendering view: "+err.Error())
	}
}
