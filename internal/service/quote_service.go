package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/locvowork/quotes_service/internal/domain"
	"github.com/locvowork/quotes_service/internal/logger"
	"github.com/locvowork/quotes_service/internal/service/serviceutils"
	"github.com/locvowork/quotes_service/pkg/quotexlsx"
)

// ErrInvalidRequest wraps payload validation failures.
var ErrInvalidRequest = errors.New("invalid quote request")

// Renderer produces quotation documents.
type Renderer interface {
	Export(ctx context.Context, doc quotexlsx.Document) (*quotexlsx.Result, error)
	Templates() *quotexlsx.TemplateSet
}

// QuoteService exports quotations and hands out quote numbers.
type QuoteService interface {
	Export(ctx context.Context, req *domain.QuoteExportRequest) (*ExportResult, error)
	NextNumber(ctx context.Context) (*domain.NextNumber, error)
	Templates() []string
}

// ExportResult is a rendered quotation ready to be sent.
type ExportResult struct {
	Data        []byte
	Year        int
	QuoteNumber string
	Token       string
	FileName    string
	SavedPath   string
	Totals      quotexlsx.Totals
}

// Config holds the optional settings of the quote service.
type Config struct {
	OutputDir string           // Local archive of generated quotes, disabled when empty
	Now       func() time.Time // Defaults to time.Now
}

type quoteService struct {
	renderer   Renderer
	sequences  domain.SequenceRepository
	conditions domain.ConditionRepository
	outputDir  string
	now        func() time.Time
}

// NewQuoteService creates the quote service. sequences and conditions may be
// nil when no database is configured.
func NewQuoteService(renderer Renderer, sequences domain.SequenceRepository, conditions domain.ConditionRepository, cfg Config) QuoteService {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &quoteService{
		renderer:   renderer,
		sequences:  sequences,
		conditions: conditions,
		outputDir:  cfg.OutputDir,
		now:        now,
	}
}

func (s *quoteService) Export(ctx context.Context, req *domain.QuoteExportRequest) (*ExportResult, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidRequest)
	}
	if err := serviceutils.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	issued := s.now()
	if req.IssueDate != nil && !req.IssueDate.IsZero() {
		issued = req.IssueDate.Time
	}

	number := strings.TrimSpace(req.QuoteNumber)
	if number == "" {
		number = s.allocateNumber(ctx, issued.Year())
	}

	doc := toDocument(req, issued, number)
	doc.Conditions = s.conditionTexts(ctx, req.ConditionIDs)

	ctx = logger.WithLogger(ctx, map[string]interface{}{
		"quote":    quotexlsx.QuoteToken(number, issued),
		"template": quotexlsx.TemplateFile(req.TemplateID),
	})
	res, err := s.renderer.Export(ctx, doc)
	if err != nil {
		return nil, err
	}

	out := &ExportResult{
		Data:        res.Data,
		Year:        issued.Year(),
		QuoteNumber: res.QuoteNumber,
		Token:       res.Token,
		FileName:    fmt.Sprintf("COT-%d-%s.xlsx", issued.Year(), res.QuoteNumber),
		Totals:      res.Totals,
	}

	if s.outputDir != "" {
		path, err := s.save(out, req.Client)
		if err != nil {
			logger.ErrorLog(ctx, "Failed to archive quote", err)
		} else {
			out.SavedPath = path
			logger.InfoLog(ctx, "Quote archived at %s", path)
		}
	}
	return out, nil
}

func (s *quoteService) NextNumber(ctx context.Context) (*domain.NextNumber, error) {
	now := s.now()
	year := now.Year()

	sequential := 1
	if s.sequences != nil {
		n, err := s.sequences.Next(ctx, year)
		if err != nil {
			return nil, fmt.Errorf("failed to allocate quote number: %w", err)
		}
		sequential = n
	}

	number := quotexlsx.FormatSequential(sequential)
	return &domain.NextNumber{
		Year:       year,
		Sequential: sequential,
		Number:     number,
		Token:      quotexlsx.QuoteToken(number, now),
	}, nil
}

func (s *quoteService) Templates() []string {
	return s.renderer.Templates().Available()
}

// allocateNumber takes the next sequential number of year, or the placeholder
// when the numbering store is missing or failing.
func (s *quoteService) allocateNumber(ctx context.Context, year int) string {
	if s.sequences == nil {
		return quotexlsx.PlaceholderNumber
	}
	n, err := s.sequences.Next(ctx, year)
	if err != nil {
		logger.WarnLog(ctx, "Quote sequence unavailable, using placeholder: %v", err)
		return quotexlsx.PlaceholderNumber
	}
	return quotexlsx.FormatSequential(n)
}

// conditionTexts resolves condition ids. Lookup failures degrade to none.
func (s *quoteService) conditionTexts(ctx context.Context, ids []string) []string {
	if len(ids) == 0 || s.conditions == nil {
		return nil
	}
	texts, err := s.conditions.TextsByIDs(ctx, ids)
	if err != nil {
		logger.WarnLog(ctx, "Could not load conditions: %v", err)
		return nil
	}
	return texts
}

var reUnsafeName = regexp.MustCompile(`[^\p{L}\p{N}_\s-]`)

// save writes the document to <outputDir>/<year>/COT-<year>-<number>_<client>.xlsx.
func (s *quoteService) save(res *ExportResult, client string) (string, error) {
	dir := filepath.Join(s.outputDir, fmt.Sprintf("%d", res.Year))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}
	name := fmt.Sprintf("COT-%d-%s_%s.xlsx", res.Year, res.QuoteNumber, safeClientName(client))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, res.Data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

func safeClientName(client string) string {
	if strings.TrimSpace(client) == "" {
		client = "SinCliente"
	}
	cleaned := []rune(reUnsafeName.ReplaceAllString(client, ""))
	if len(cleaned) > 30 {
		cleaned = cleaned[:30]
	}
	return strings.ReplaceAll(strings.TrimSpace(string(cleaned)), " ", "_")
}

func toDocument(req *domain.QuoteExportRequest, issued time.Time, number string) quotexlsx.Document {
	doc := quotexlsx.Document{
		Variant:          req.TemplateID,
		QuoteNumber:      number,
		IssueDate:        issued,
		Client:           req.Client,
		RUC:              req.RUC,
		Contact:          req.Contact,
		Phone:            req.ContactPhone,
		Email:            req.Email,
		Project:          req.Project,
		Location:         req.Location,
		Commercial:       req.Commercial,
		CommercialPhone:  req.CommercialPhone,
		CommercialEmail:  req.SellerEmail,
		DeliveryDays:     req.DeliveryDays,
		PaymentCondition: req.PaymentCondition,
		IncludeIGV:       req.IGVIncluded(),
		IGVRate:          quotexlsx.DefaultIGVRate,
	}
	if doc.CommercialEmail == "" {
		doc.CommercialEmail = req.Email
	}
	if req.IGVRate != nil {
		doc.IGVRate = *req.IGVRate
	}
	if req.RequestDate != nil && !req.RequestDate.IsZero() {
		d := req.RequestDate.Time
		doc.RequestDate = &d
	}

	doc.Items = make([]quotexlsx.LineItem, 0, len(req.Items))
	for _, it := range req.Items {
		doc.Items = append(doc.Items, quotexlsx.LineItem{
			Code:        it.Code,
			Description: it.Description,
			Standard:    it.Standard,
			Accredited:  it.Accredited,
			UnitCost:    it.UnitCost,
			Quantity:    it.Quantity,
		})
	}
	return doc
}
