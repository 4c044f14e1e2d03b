package types

// Country is a two-letter ISO 3166-1 country code
type Country string

const (
	CountryArgentina Country = "AR"
	CountryColombia  Country = "CO"
	CountryMexico    Country = "MX"
	CountryUSA       Country = "US"
)

func (c Country) String() string {
	return string(c)
}

// AllowedTransferCountries are the billing countries for which the
// transfer payment method is supported.
var AllowedTransferCountries = []Country{
	CountryColombia,
	CountryMexico,
}
