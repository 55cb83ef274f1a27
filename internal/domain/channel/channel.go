package channel

// ---------------------------------------------------------------------------
// Code represents a sales channel
// ---------------------------------------------------------------------------

// Code identifies one of the external sales channels the engine reconciles
// stock across. Three codes map to separate seller accounts on the same
// marketplace API and share a client implementation.
type Code string

const (
	// CodeEbayOne represents the first eBay seller account
	CodeEbayOne Code = "EBAY_ONE"
	// CodeEbayTwo represents the second eBay seller account
	CodeEbayTwo Code = "EBAY_TWO"
	// CodeEbayThree represents the third eBay seller account
	CodeEbayThree Code = "EBAY_THREE"
	// CodeWalmart represents the Walmart marketplace
	CodeWalmart Code = "WALMART"
	// CodeSears represents the Sears marketplace
	CodeSears Code = "SEARS"
)

// AllCodes returns every channel code in registry order.
func AllCodes() []Code {
	return []Code{CodeEbayOne, CodeEbayTwo, CodeEbayThree, CodeWalmart, CodeSears}
}

// IsValid returns true if the channel code is valid
func (c Code) IsValid() bool {
	switch c {
	case CodeEbayOne, CodeEbayTwo, CodeEbayThree, CodeWalmart, CodeSears:
		return true
	default:
		return false
	}
}

// String returns the string representation of Code
func (c Code) String() string {
	return string(c)
}

// DisplayName returns a human-readable name for the channel
func (c Code) DisplayName() string {
	switch c {
	case CodeEbayOne:
		return "eBay (store 1)"
	case CodeEbayTwo:
		return "eBay (store 2)"
	case CodeEbayThree:
		return "eBay (store 3)"
	case CodeWalmart:
		return "Walmart Marketplace"
	case CodeSears:
		return "Sears Marketplace"
	default:
		return string(c)
	}
}
