package fakeplatform

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"

	"github.com/s0up4200/cardctl/model"
)

func (s *Server) seed() {
	s.user = model.User{
		UserID: "usr_seed",
		UserData: model.NewList(
			model.PersonalName{FirstName: "Jane", LastName: "Doe"},
			model.PhoneNumber{CountryCode: "1", PhoneNumber: "5555550100", Verified: true},
			model.Email{Email: "jane@example.com"},
		),
	}

	s.config = model.ContextConfiguration{
		Team: model.TeamConfiguration{Name: "Acme"},
		Project: model.ProjectConfiguration{
			Name:                     "Acme Card",
			PrimaryAuthCredential:    model.KindPhone,
			SecondaryAuthCredentials: []string{model.KindEmail, model.KindBirthDate},
			AllowedCountries:         []string{"US"},
		},
	}
	s.products = []model.CardProduct{{
		ID:                  "cp_1",
		Name:                "Acme Card",
		CardIssuer:          "Acme Bank",
		CardholderAgreement: &model.Content{Format: model.ContentMarkdown, Value: "# Agreement"},
	}}

	usd := func(amount float64) *model.Money {
		m := model.NewMoney(amount, "USD")
		return &m
	}

	s.cards = []model.Card{
		{
			AccountID:      "crd_1",
			CardNetwork:    "visa",
			LastFour:       "4242",
			State:          model.CardActive,
			NameOnCard:     "JANE DOE",
			CardProductID:  "cp_1",
			SpendableToday: usd(100),
			TotalBalance:   usd(250),
			Features:       &model.CardFeatures{SetPIN: true, GetPIN: true},
		},
		{
			AccountID:   "crd_2",
			CardNetwork: "mastercard",
			LastFour:    "1881",
			State:       model.CardInactive,
		},
	}
	s.details["crd_1"] = model.CardDetails{Expiration: "2027-03", PAN: "4111111111111111", CVV: "123"}

	s.fundingSources["crd_1"] = []model.FundingSource{
		{
			ID:      "fs_1",
			State:   model.FundingSourceValid,
			Balance: usd(250),
			Custodian: &model.Custodian{
				CustodianType: "coinbase",
				Name:          "Coinbase",
			},
		},
		{
			ID:        "fs_2",
			State:     model.FundingSourceValid,
			Balance:   &model.Money{Currency: "BTC", Amount: decimal.RequireFromString("0.5")},
			Custodian: &model.Custodian{CustodianType: "uphold", Name: "Uphold"},
		},
	}
	s.selected["crd_1"] = "fs_1"

	merchants := []string{"Blue Bottle", "Whole Foods", "Shell", "Amazon"}
	categories := []string{"restaurants", "grocery", "gas", "shopping"}
	txns := make([]model.Transaction, 0, 45)
	for i := 0; i < 45; i++ {
		txn := model.Transaction{
			TransactionID:   fmt.Sprintf("txn_%02d", i),
			TransactionType: model.TransactionPurchase,
			State:           model.TransactionStateComplete,
			CreatedAt:       epoch.Add(-time.Duration(i) * time.Hour),
			Description:     merchants[i%len(merchants)] + " purchase",
			LocalAmount:     usd(float64(i+1) * 1.25),
			BillingAmount:   usd(float64(i+1) * 1.25),
			Merchant: &model.Merchant{
				Name: merchants[i%len(merchants)],
				MCC:  &model.MCC{Name: categories[i%len(categories)]},
			},
		}
		if i%10 == 9 {
			txn.TransactionType = model.TransactionDecline
			txn.State = model.TransactionStateDeclined
			txn.DeclineReason = "insufficient funds"
		}
		if i < 2 {
			txn.TransactionType = model.TransactionPending
			txn.State = model.TransactionStatePending
		}
		txns = append(txns, txn)
	}
	s.transactions["crd_1"] = txns

	on, off := true, false
	s.prefs = model.NotificationPreferences{Preferences: []model.NotificationGroup{
		{
			GroupID:        "payment_declined",
			Title:          "Declined payments",
			ActiveChannels: model.NotificationChannels{Push: &on, Email: &off},
		},
	}}

	s.period = model.MonthlyStatementsPeriod{
		Start: model.Month{Month: 11, Year: 2023},
		End:   model.Month{Month: 2, Year: 2024},
	}
}

// readRecord parses the record found at path in the request body
func (s *Server) readRecord(r *http.Request, path string) (model.Record, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	raw := gjson.GetBytes(body, path)
	if !raw.Exists() {
		return nil, fmt.Errorf("missing %s", path)
	}
	return s.parser.Parse([]byte(raw.Raw))
}

func readField(r *http.Request, path string) (string, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return "", err
	}
	v := gjson.GetBytes(body, path)
	if !v.Exists() || v.String() == "" {
		return "", fmt.Errorf("missing %s", path)
	}
	return v.String(), nil
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	rec, err := s.readRecord(r, "data_points")
	list, ok := rec.(model.List)
	if err != nil || !ok {
		writeError(w, http.StatusBadRequest, CodeNotFound, "data_points must be a list")
		return
	}

	s.mu.Lock()
	s.user = model.User{UserID: s.nextID("usr"), UserData: list}
	s.token = uuid.NewString()
	user := s.user
	user.UserToken = s.token
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, user)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	rec, err := s.readRecord(r, "verifications")
	list, ok := rec.(model.List)
	if err != nil || !ok || list.Len() == 0 {
		writeError(w, http.StatusBadRequest, CodeNotVerified, "verifications must be a non-empty list")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range list.Data {
		v, ok := item.(model.Verification)
		if !ok {
			writeError(w, http.StatusBadRequest, CodeNotVerified, "verifications must hold verification records")
			return
		}
		stored, ok := s.verifications[v.VerificationID]
		if !ok || !stored.IsPassed() {
			writeError(w, http.StatusBadRequest, CodeNotVerified, "verification "+v.VerificationID+" has not passed")
			return
		}
	}

	s.token = uuid.NewString()
	user := s.user
	user.UserToken = s.token
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) currentUser(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	user := s.user
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	rec, err := s.readRecord(r, "data_points")
	list, ok := rec.(model.List)
	if err != nil || !ok {
		writeError(w, http.StatusBadRequest, CodeNotFound, "data_points must be a list")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, dp := range list.Data {
		replaced := false
		for i, existing := range s.user.UserData.Data {
			if existing.Kind() == dp.Kind() {
				s.user.UserData.Data[i] = dp
				replaced = true
				break
			}
		}
		if !replaced {
			s.user.UserData.Data = append(s.user.UserData.Data, dp)
		}
	}
	writeJSON(w, http.StatusOK, s.user)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
	w.WriteHeader(http.StatusOK)
}

func (s *Server) startVerification(w http.ResponseWriter, r *http.Request) {
	rec, err := s.readRecord(r, "datapoint")
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeNotFound, err.Error())
		return
	}

	s.mu.Lock()
	v := model.Verification{
		VerificationID:   s.nextID("ver"),
		VerificationType: rec.Kind(),
		Status:           model.VerificationPending,
	}
	s.verifications[v.VerificationID] = v
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, v)
}

func (s *Server) lookupVerification(w http.ResponseWriter, r *http.Request) (model.Verification, bool) {
	id := chi.URLParam(r, "verificationId")
	v, ok := s.verifications[id]
	if !ok {
		writeError(w, http.StatusNotFound, CodeNotFound, "verification not found")
	}
	return v, ok
}

func (s *Server) verificationStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.lookupVerification(w, r); ok {
		writeJSON(w, http.StatusOK, v)
	}
}

func (s *Server) finishVerification(w http.ResponseWriter, r *http.Request) {
	secret, _ := readField(r, "secret")

	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.lookupVerification(w, r)
	if !ok {
		return
	}
	if secret == Secret {
		v.Status = model.VerificationPassed
	} else {
		v.Status = model.VerificationFailed
	}
	s.verifications[v.VerificationID] = v
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) restartVerification(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.lookupVerification(w, r)
	if !ok {
		return
	}
	v.Status = model.VerificationPending
	s.verifications[v.VerificationID] = v
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) contextConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.config)
}

func (s *Server) cardProducts(w http.ResponseWriter, r *http.Request) {
	summaries := make([]model.Record, len(s.products))
	for i, p := range s.products {
		summaries[i] = model.CardProductSummary{ID: p.ID, Name: p.Name, Countries: []string{"US"}}
	}
	writeJSON(w, http.StatusOK, model.NewList(summaries...))
}

func (s *Server) hasProduct(id string) bool {
	for _, p := range s.products {
		if p.ID == id {
			return true
		}
	}
	return false
}

func (s *Server) cardProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "cardProductId")
	for _, p := range s.products {
		if p.ID == id {
			writeJSON(w, http.StatusOK, p)
			return
		}
	}
	writeError(w, http.StatusNotFound, CodeNotFound, "card product not found")
}

func (s *Server) preferences(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.prefs)
}

func (s *Server) updatePreferences(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeNotFound, err.Error())
		return
	}
	rec, err := s.parser.Parse(body)
	prefs, ok := rec.(model.NotificationPreferences)
	if err != nil || !ok {
		writeError(w, http.StatusBadRequest, CodeNotFound, "invalid preferences")
		return
	}

	s.mu.Lock()
	s.prefs = prefs
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, prefs)
}

func (s *Server) apply(w http.ResponseWriter, r *http.Request) {
	productID, err := readField(r, "card_product_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeNotFound, err.Error())
		return
	}

	if !s.hasProduct(productID) {
		writeError(w, http.StatusNotFound, CodeNotFound, "card product not found")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	app := model.CardApplication{
		ID:               s.nextID("app"),
		Status:           model.ApplicationCreated,
		WorkflowObjectID: s.nextID("wf"),
		NextAction: model.WorkflowAction{
			ActionID:   s.nextID("act"),
			ActionType: model.ActionSelectBalanceStore,
			Configuration: model.SelectBalanceStoreConfiguration{
				AllowedBalanceTypes: []model.AllowedBalanceType{{BalanceType: "coinbase", BaseURI: "https://example.com/oauth"}},
			},
		},
	}
	s.applications[app.ID] = app
	writeJSON(w, http.StatusOK, app)
}

func (s *Server) lookupApplication(w http.ResponseWriter, r *http.Request) (model.CardApplication, bool) {
	app, ok := s.applications[chi.URLParam(r, "applicationId")]
	if !ok {
		writeError(w, http.StatusNotFound, CodeNotFound, "application not found")
	}
	return app, ok
}

func (s *Server) applicationStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if app, ok := s.lookupApplication(w, r); ok {
		writeJSON(w, http.StatusOK, app)
	}
}

// advance moves an application to its next step; callers hold s.mu
func (s *Server) advance(app model.CardApplication, next model.ActionType, cfg model.Record) model.CardApplication {
	app.Status = model.ApplicationPending
	app.NextAction = model.WorkflowAction{
		ActionID:      s.nextID("act"),
		ActionType:    next,
		Configuration: cfg,
	}
	s.applications[app.ID] = app
	return app
}

func (s *Server) selectBalanceStore(w http.ResponseWriter, r *http.Request) {
	actionID, _ := readField(r, "action_id")

	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.lookupApplication(w, r)
	if !ok {
		return
	}
	if app.NextAction.ActionType != model.ActionSelectBalanceStore || app.NextAction.ActionID != actionID {
		writeError(w, http.StatusBadRequest, CodeInvalidWorkflow, "unexpected workflow action")
		return
	}

	app = s.advance(app, model.ActionShowDisclaimer, model.DisclaimerConfiguration{
		Disclaimer: model.Content{Format: model.ContentPlainText, Value: "Cards are issued by Acme Bank."},
	})
	writeJSON(w, http.StatusOK, app)
}

func (s *Server) acceptDisclaimer(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	workflowID := gjson.GetBytes(body, "workflow_object_id").String()
	actionID := gjson.GetBytes(body, "action_id").String()

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, app := range s.applications {
		if app.WorkflowObjectID != workflowID {
			continue
		}
		if app.NextAction.ActionType != model.ActionShowDisclaimer || app.NextAction.ActionID != actionID {
			writeError(w, http.StatusBadRequest, CodeInvalidWorkflow, "unexpected workflow action")
			return
		}
		s.advance(app, model.ActionIssueCard, model.IssueCardConfiguration{})
		w.WriteHeader(http.StatusOK)
		return
	}
	writeError(w, http.StatusNotFound, CodeNotFound, "workflow not found")
}

func (s *Server) issueCard(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.lookupApplication(w, r)
	if !ok {
		return
	}
	if app.NextAction.ActionType != model.ActionIssueCard {
		writeError(w, http.StatusBadRequest, CodeInvalidWorkflow, "application is not ready for issuance")
		return
	}

	card := model.Card{
		AccountID:   s.nextID("crd"),
		CardNetwork: "visa",
		LastFour:    "0005",
		State:       model.CardCreated,
	}
	s.cards = append(s.cards, card)
	app.Status = model.ApplicationApproved
	s.applications[app.ID] = app

	writeJSON(w, http.StatusOK, card)
}

func (s *Server) listCards(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := make([]model.Record, len(s.cards))
	for i, c := range s.cards {
		records[i] = c
	}
	writeJSON(w, http.StatusOK, model.NewList(records...))
}

// lookupCard returns the index of the card named in the URL; callers hold s.mu
func (s *Server) lookupCard(w http.ResponseWriter, r *http.Request) (int, bool) {
	id := chi.URLParam(r, "accountId")
	for i, c := range s.cards {
		if c.AccountID == id {
			return i, true
		}
	}
	writeError(w, http.StatusNotFound, CodeNotFound, "card not found")
	return 0, false
}

func (s *Server) getCard(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.lookupCard(w, r); ok {
		writeJSON(w, http.StatusOK, s.cards[i])
	}
}

func (s *Server) cardDetails(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.lookupCard(w, r)
	if !ok {
		return
	}
	details, ok := s.details[s.cards[i].AccountID]
	if !ok {
		writeError(w, http.StatusNotFound, CodeNotFound, "no details for card")
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	rows, _ := strconv.Atoi(r.URL.Query().Get("rows"))
	if rows <= 0 {
		rows = 20
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.lookupCard(w, r)
	if !ok {
		return
	}
	all := s.transactions[s.cards[i].AccountID]

	start := min(page*rows, len(all))
	end := min(start+rows, len(all))
	records := make([]model.Record, 0, end-start)
	for _, t := range all[start:end] {
		records = append(records, t)
	}

	list := model.NewList(records...)
	list.Page = page
	list.Rows = rows
	list.HasMore = end < len(all)
	list.TotalCount = len(all)
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) activatePhysical(w http.ResponseWriter, r *http.Request) {
	code, _ := readField(r, "code")

	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.lookupCard(w, r)
	if !ok {
		return
	}
	if code != Secret {
		writeJSON(w, http.StatusOK, model.PhysicalCardActivationResult{
			Result:       "error",
			ErrorCode:    CodeInvalidSecret,
			ErrorMessage: "wrong activation code",
		})
		return
	}
	s.cards[i].State = model.CardActive
	writeJSON(w, http.StatusOK, model.PhysicalCardActivationResult{Result: "activated"})
}

func (s *Server) setCardState(state model.CardState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		i, ok := s.lookupCard(w, r)
		if !ok {
			return
		}
		s.cards[i].State = state
		writeJSON(w, http.StatusOK, s.cards[i])
	}
}

func (s *Server) setPIN(w http.ResponseWriter, r *http.Request) {
	if _, err := readField(r, "pin"); err != nil {
		writeError(w, http.StatusBadRequest, CodeNotFound, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.lookupCard(w, r); ok {
		writeJSON(w, http.StatusOK, s.cards[i])
	}
}

func (s *Server) selectedSource(accountID string) (model.FundingSource, bool) {
	for _, fs := range s.fundingSources[accountID] {
		if fs.ID == s.selected[accountID] {
			return fs, true
		}
	}
	return model.FundingSource{}, false
}

func (s *Server) fundingSource(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.lookupCard(w, r)
	if !ok {
		return
	}
	fs, ok := s.selectedSource(s.cards[i].AccountID)
	if !ok {
		writeError(w, http.StatusNotFound, CodeNotFound, "no funding source")
		return
	}
	writeJSON(w, http.StatusOK, fs)
}

func (s *Server) setFundingSource(w http.ResponseWriter, r *http.Request) {
	id, err := readField(r, "funding_source_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeNotFound, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.lookupCard(w, r)
	if !ok {
		return
	}
	accountID := s.cards[i].AccountID
	for _, fs := range s.fundingSources[accountID] {
		if fs.ID == id {
			s.selected[accountID] = id
			writeJSON(w, http.StatusOK, fs)
			return
		}
	}
	writeError(w, http.StatusNotFound, CodeNotFound, "funding source not found")
}

func (s *Server) listFundingSources(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.lookupCard(w, r)
	if !ok {
		return
	}
	sources := s.fundingSources[s.cards[i].AccountID]
	records := make([]model.Record, len(sources))
	for j, fs := range sources {
		records[j] = fs
	}
	writeJSON(w, http.StatusOK, model.NewList(records...))
}

func (s *Server) monthlySpending(w http.ResponseWriter, r *http.Request) {
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil || month < 1 || month > 12 {
		writeError(w, http.StatusBadRequest, CodeNotFound, "invalid month")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lookupCard(w, r); !ok {
		return
	}
	writeJSON(w, http.StatusOK, model.MonthlySpending{
		PreviousSpendingExists: true,
		Spending: []model.CategorySpending{
			{CategoryID: "restaurants", Spending: model.NewMoney(42.5, "USD")},
			{CategoryID: "grocery", Spending: model.NewMoney(120, "USD")},
		},
	})
}

func (s *Server) startOAuth(w http.ResponseWriter, r *http.Request) {
	balanceType, err := readField(r, "balance_type")
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeNotFound, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	attempt := model.OAuthAttempt{
		ID:     s.nextID("oa"),
		Status: model.OAuthPending,
		URL:    "https://example.com/oauth/" + balanceType,
	}
	s.attempts[attempt.ID] = attempt
	writeJSON(w, http.StatusOK, attempt)
}

func (s *Server) oauthAttempt(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	attempt, ok := s.attempts[chi.URLParam(r, "attemptId")]
	if !ok {
		writeError(w, http.StatusNotFound, CodeNotFound, "attempt not found")
		return
	}
	writeJSON(w, http.StatusOK, attempt)
}

func (s *Server) oauthUserData(w http.ResponseWriter, r *http.Request) {
	if _, err := readField(r, "custodian.custodian_type"); err != nil {
		writeError(w, http.StatusBadRequest, CodeNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, model.OAuthUserData{
		Result: "valid",
		UserData: model.NewList(
			model.Email{Email: "jane@example.com", Verified: true},
			model.PersonalName{FirstName: "Jane", LastName: "Doe"},
		),
	})
}

func (s *Server) statementsPeriod(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.period)
}

func (s *Server) statement(w http.ResponseWriter, r *http.Request) {
	month, err1 := strconv.Atoi(chi.URLParam(r, "month"))
	year, err2 := strconv.Atoi(chi.URLParam(r, "year"))
	if err1 != nil || err2 != nil || !s.period.Contains(model.Month{Month: month, Year: year}) {
		writeError(w, http.StatusNotFound, CodeNotFound, "no statement for month")
		return
	}
	writeJSON(w, http.StatusOK, model.MonthlyStatementReport{
		ID:          fmt.Sprintf("st_%04d_%02d", year, month),
		Month:       month,
		Year:        year,
		DownloadURL: fmt.Sprintf("https://example.com/statements/%04d-%02d.pdf", year, month),
	})
}

func (s *Server) requestOffers(w http.ResponseWriter, r *http.Request) {
	if _, err := readField(r, "card_product_id"); err != nil {
		writeError(w, http.StatusBadRequest, CodeNotFound, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	req := model.OfferRequest{ID: s.nextID("or"), Status: "ready"}
	s.offerRequests[req.ID] = req
	writeJSON(w, http.StatusOK, req)
}

func (s *Server) listOffers(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	_, ok := s.offerRequests[chi.URLParam(r, "offerRequestId")]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, CodeNotFound, "offer request not found")
		return
	}

	loan := model.NewMoney(1000, "USD")
	offers := []model.Record{
		model.Offer{ID: "of_1", Lender: model.Lender{Name: "Acme Lending"}, LoanAmount: &loan, InterestRate: decimal.RequireFromString("7.5")},
		model.Offer{ID: "of_2", Lender: model.Lender{Name: "Zed Credit"}, LoanAmount: &loan, InterestRate: decimal.RequireFromString("9.9")},
	}
	writeJSON(w, http.StatusOK, model.NewList(offers...))
}
