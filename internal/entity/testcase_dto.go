package entity

// GenerateTestCaseRequest is the body of POST /api/test-cases/generate.
type GenerateTestCaseRequest struct {
	InputData string `json:"inputData"`
	LLMModel  string `json:"llmModel"`
}

// UpdateTestCaseRequest is the body of POST /api/test-cases/{id}/update.
type UpdateTestCaseRequest struct {
	ChangesInput string `json:"changesInput"`
	LLMModel     string `json:"llmModel"`
}

// UpdateStepsRequest is one element of the PUT /api/test-cases/{id}/steps
// body. Step numbers are assigned server-side, 1..N in input order.
type UpdateStepsRequest struct {
	Action         string `json:"action"`
	ExpectedResult string `json:"expectedResult"`
}

// TestCaseResponse pairs a test case with the recommendation that
// accompanied the final validation call (null when validation passed).
type TestCaseResponse struct {
	TestCase       *TestCase `json:"testCase"`
	Recommendation *string   `json:"recommendation"`
}

// AddHistoryEntryRequest is the body of POST /api/history.
type AddHistoryEntryRequest struct {
	TestCaseID string `json:"testCaseId"`
	Action     string `json:"action"`
	User       string `json:"user"`
	Details    string `json:"details"`
}

// GenerateDataPoolRequest is the body of POST /api/data-pools/generate.
type GenerateDataPoolRequest struct {
	TestCaseJSON string `json:"testCaseJson"`
	LLMModel     string `json:"llmModel"`
}
