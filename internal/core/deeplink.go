package core

const storeProductPageBase = "ms-windows-store://pdp/?ProductId="

// StoreProductURI builds the deep link to a product's Store page. The id is
// passed through as given.
func StoreProductURI(productID string) string {
	return storeProductPageBase + productID
}
