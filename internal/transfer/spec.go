package transfer

// Spec parameterizes a form that submits one file and downloads the result.
type Spec struct {
	Name              string
	Title             string
	EndpointPath      string
	DownloadFilename  string
	FieldLabel        string
	Hint              string
	Accept            string
	ButtonText        string
	ValidationMessage string
	FailureMessage    string
}

var ProcessSpec = Spec{
	Name:              "process",
	Title:             "Upload Transaction CSV",
	EndpointPath:      "/api/process-transaction",
	DownloadFilename:  "processed_result.csv",
	FieldLabel:        "Transaction CSV File",
	Hint:              "Please upload a CSV file containing transaction data.",
	Accept:            ".csv",
	ButtonText:        "Upload and Process with Stego",
	ValidationMessage: "Please select a CSV file to upload.",
	FailureMessage:    "Failed to process file. Please try again.",
}

var RecoverySpec = Spec{
	Name:              "recover",
	Title:             "Recover Transaction",
	EndpointPath:      "/api/recover-transaction",
	DownloadFilename:  "recovered_transaction.csv",
	FieldLabel:        "Encoded File",
	Hint:              "Please upload the encoded file for recovery.",
	ButtonText:        "Recover",
	ValidationMessage: "Please upload the encoded file.",
	FailureMessage:    "Failed to recover transaction. Please try again.",
}

// Specs returns the forms in the order they appear on the page.
func Specs() []Spec {
	return []Spec{ProcessSpec, RecoverySpec}
}

func SpecByName(name string) (Spec, bool) {
	for _, s := range Specs() {
		if s.Name == name {
			return s, true
		}
	}

	return Spec{}, false
}
