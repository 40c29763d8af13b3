package domain

// Transaction is one row of the transaction CSV template accepted by the backend.
type Transaction struct {
	TransactionID int    `csv:"Transaction ID"`
	UserID        int    `csv:"User ID"`
	Amount        int    `csv:"Amount"`
	Date          string `csv:"Date"`
	Type          string `csv:"Type"`
	GameID        int    `csv:"Game ID"`
	Currency      string `csv:"Currency"`
	Status        string `csv:"Status"`
	PaymentMethod string `csv:"Payment Method"`
	Notes         string `csv:"Notes"`
}
