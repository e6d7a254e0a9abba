package domain

// Product описывает товар каталога.
// ID генерируется сервером при создании и никогда не переназначается.
type Product struct {
	ID         string
	Name       string
	Code       string
	PriceMinor int64
	Model      string
	URL        string
}

// ValidateInvariants проверяет базовые инварианты товара и возвращает список замечаний.
func (p *Product) ValidateInvariants() []error {
	var errs []error

	if p.Name == "" {
		errs = append(errs, ErrProductNameRequired)
	}
	if p.Code == "" {
		errs = append(errs, ErrProductCodeRequired)
	}
	if p.PriceMinor < 0 {
		errs = append(errs, ErrProductPriceNegative)
	}

	return errs
}
