package widget

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/perxlab/catalog-widget/pkg/types"
)

func (w *Widget) buildView(route string) View {
	switch route {
	case RouteCatalog:
		return w.catalogView()
	case RouteCart:
		return w.cartView()
	default:
		return w.homeView()
	}
}

func (w *Widget) homeView() View {
	view := View{Route: RouteHome, Title: "Featured products"}
	view.Lines = append(view.Lines, w.statusLines()...)
	for _, product := range w.catalog.HomeSelection() {
		view.Lines = append(view.Lines, productLine(product, w.cart.QuantityOf(product.ID)))
	}
	return view
}

func (w *Widget) catalogView() View {
	view := View{Route: RouteCatalog, Title: "Catalog"}
	view.Lines = append(view.Lines, w.statusLines()...)

	for _, dealer := range w.catalog.Dealers() {
		marker := " "
		if w.filter.Selected(dealer.ID) {
			marker = "x"
		}
		view.Lines = append(view.Lines, fmt.Sprintf("[%s] %s", marker, dealer.Name))
	}
	view.Lines = append(view.Lines, fmt.Sprintf("sort: %s", w.filter.Sort()))

	for _, product := range w.catalog.Sorted(w.filter.Sort()) {
		view.Lines = append(view.Lines, productLine(product, w.cart.QuantityOf(product.ID)))
	}
	return view
}

func (w *Widget) cartView() View {
	view := View{Route: RouteCart, Title: "Cart"}
	for _, line := range w.cart.Lines() {
		view.Lines = append(view.Lines, fmt.Sprintf("%s x%d = %s",
			line.Product.Title,
			line.Quantity,
			line.Product.Price.Mul(quantityDecimal(line.Quantity)).StringFixed(2)))
	}
	view.Lines = append(view.Lines,
		fmt.Sprintf("items: %d", w.cart.TotalItems()),
		fmt.Sprintf("total: %s", w.cart.TotalPrice().StringFixed(2)))
	return view
}

func (w *Widget) statusLines() []string {
	var lines []string
	if w.catalog.Loading() {
		lines = append(lines, "loading...")
	}
	if msg := w.catalog.Err(); msg != "" {
		lines = append(lines, "error: "+msg)
	}
	return lines
}

func productLine(product types.Product, inCart int) string {
	line := fmt.Sprintf("%s - %s (%s)", product.Title, product.Price.StringFixed(2), product.DealerName)
	if inCart > 0 {
		line += fmt.Sprintf(" [in cart: %d]", inCart)
	}
	return line
}

func quantityDecimal(quantity int) decimal.Decimal {
	return decimal.NewFromInt(int64(quantity))
}
