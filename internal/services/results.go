package services

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/skip2/go-qrcode"
	"github.com/xuri/excelize/v2"

	"github.com/abrezinsky/gymscore/internal/errors"
	"github.com/abrezinsky/gymscore/internal/logger"
	"github.com/abrezinsky/gymscore/internal/models"
	"github.com/abrezinsky/gymscore/internal/repository"
)

// DefaultPerPage is the page size when none (or an unsupported one) is requested
const DefaultPerPage = 5

// PerPageOptions are the accepted page sizes; models.ShowAll disables paging
var PerPageOptions = []int{5, 10, 20, 50, 100, 1000, models.ShowAll}

// ResultsServiceRepository defines the repository methods needed by ResultsService
type ResultsServiceRepository interface {
	SearchResults(ctx context.Context, f repository.ResultFilter) ([]models.ResultRow, int, error)
	LevelsInCompetition(ctx context.Context, competitionID int) ([]models.Level, error)
	GetCompetition(ctx context.Context, id int) (*models.Competition, error)
}

// ResultsService searches and exports recorded scores
type ResultsService struct {
	log         logger.Logger
	repo        ResultsServiceRepository
	leaderboard LeaderboardServicer
}

// NewResultsService creates a new ResultsService
func NewResultsService(log logger.Logger, repo ResultsServiceRepository, leaderboard LeaderboardServicer) *ResultsService {
	return &ResultsService{log: log, repo: repo, leaderboard: leaderboard}
}

// ResultsQuery selects, orders and pages score rows.
// Text is matched as a case-insensitive substring of gymnast, club,
// competition and apparatus names and the level. Numeric, when integral,
// also matches gymnast or entry IDs exactly.
type ResultsQuery struct {
	Text          string
	Numeric       *float64
	CompetitionID *int
	SortBy        string
	SortOrder     string // asc or desc
	Page          int
	PerPage       int
}

// NewResultsQuery builds a query from a free-text search box value
func NewResultsQuery(search string) ResultsQuery {
	q := ResultsQuery{Text: strings.TrimSpace(search)}
	if n, err := strconv.ParseFloat(q.Text, 64); err == nil {
		q.Numeric = &n
	}
	return q
}

// ValidPerPage reports whether n is one of PerPageOptions
func ValidPerPage(n int) bool {
	for _, o := range PerPageOptions {
		if o == n {
			return true
		}
	}
	return false
}

func (q ResultsQuery) filter() repository.ResultFilter {
	f := repository.ResultFilter{
		Text:          q.Text,
		CompetitionID: q.CompetitionID,
		SortBy:        q.SortBy,
		Descending:    !strings.EqualFold(q.SortOrder, "asc"),
	}
	if !repository.ValidResultSort(f.SortBy) {
		f.SortBy = "total"
	}
	if n := q.Numeric; n != nil && *n == math.Trunc(*n) && math.Abs(*n) < math.MaxInt32 {
		id := int(*n)
		f.Number = &id
	}
	return f
}

// Search returns one page of matching results, or all of them when
// PerPage is models.ShowAll
func (s *ResultsService) Search(ctx context.Context, q ResultsQuery) (models.Page[models.ResultRow], error) {
	f := q.filter()

	perPage := q.PerPage
	if !ValidPerPage(perPage) {
		perPage = DefaultPerPage
	}
	if perPage == models.ShowAll {
		rows, _, err := s.repo.SearchResults(ctx, f)
		if err != nil {
			return models.Page[models.ResultRow]{}, internalError(err)
		}
		return models.AllItems(rows), nil
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	f.Limit = perPage
	f.Offset = (page - 1) * perPage

	rows, total, err := s.repo.SearchResults(ctx, f)
	if err != nil {
		return models.Page[models.ResultRow]{}, internalError(err)
	}
	s.log.Debug("Results searched", "text", q.Text, "sort", f.SortBy, "page", page, "total", total)
	return models.NewPage(rows, page, perPage, total), nil
}

var resultHeaders = []interface{}{
	"Score ID", "Entry ID", "Gymnast ID", "Gymnast", "Club", "Level",
	"Competition", "Apparatus", "E Score", "D Score", "Penalty", "Total",
}

// ExportXLSX writes every result matching q to a workbook with one "Results" sheet
func (s *ResultsService) ExportXLSX(ctx context.Context, q ResultsQuery) ([]byte, error) {
	rows, _, err := s.repo.SearchResults(ctx, q.filter())
	if err != nil {
		return nil, internalError(err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Results"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, errors.Internal(err)
	}
	data := make([][]interface{}, 0, len(rows))
	for _, r := range rows {
		data = append(data, []interface{}{
			r.ScoreID, r.EntryID, r.GymnastID, r.GymnastName, r.ClubName, string(r.Level),
			r.CompetitionName, r.ApparatusName, r.EScore, r.DScore, r.Penalty, RoundTo(r.Total, ScorePrecision),
		})
	}
	if err := writeSheet(f, sheet, resultHeaders, data); err != nil {
		return nil, errors.Internal(err)
	}

	s.log.Info("Results exported", "rows", len(rows))
	return workbookBytes(f)
}

var allAroundHeaders = []interface{}{
	"Rank", "Gymnast ID", "Gymnast", "Club", "Apparatus Scored", "E Score", "D Score", "Penalty", "Total",
}

// CompetitionExportXLSX writes the all-around standings of a competition,
// one sheet per level in canonical level order
func (s *ResultsService) CompetitionExportXLSX(ctx context.Context, competitionID int) ([]byte, error) {
	if _, err := s.repo.GetCompetition(ctx, competitionID); err != nil {
		return nil, lookupError(err, "competition", competitionID)
	}
	levels, err := s.repo.LevelsInCompetition(ctx, competitionID)
	if err != nil {
		return nil, internalError(err)
	}
	models.SortLevels(levels)

	f := excelize.NewFile()
	defer f.Close()

	if len(levels) == 0 {
		if err := f.SetSheetName("Sheet1", "All-Around"); err != nil {
			return nil, errors.Internal(err)
		}
		if err := writeSheet(f, "All-Around", allAroundHeaders, nil); err != nil {
			return nil, errors.Internal(err)
		}
		return workbookBytes(f)
	}

	for i, level := range levels {
		rows, err := s.leaderboard.AllAround(ctx, competitionID, level)
		if err != nil {
			return nil, err
		}

		sheet := sheetName(string(level))
		if i == 0 {
			err = f.SetSheetName("Sheet1", sheet)
		} else {
			_, err = f.NewSheet(sheet)
		}
		if err != nil {
			return nil, errors.Internal(err)
		}

		data := make([][]interface{}, 0, len(rows))
		for _, r := range rows {
			data = append(data, []interface{}{
				r.Rank, r.GymnastID, r.GymnastName, r.ClubName, r.ApparatusCount, r.EScore, r.DScore, r.Penalty, r.Total,
			})
		}
		if err := writeSheet(f, sheet, allAroundHeaders, data); err != nil {
			return nil, errors.Internal(err)
		}
	}

	s.log.Info("Competition exported", "competition_id", competitionID, "levels", len(levels))
	return workbookBytes(f)
}

// LiveQR renders a PNG QR code pointing spectators at the live board
func (s *ResultsService) LiveQR(ctx context.Context, baseURL string) ([]byte, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.FieldValidation("base_url", "base_url is not configured")
	}
	liveURL := fmt.Sprintf("%s/live", strings.TrimSuffix(baseURL, "/"))
	png, err := qrcode.Encode(liveURL, qrcode.Medium, 256)
	if err != nil {
		return nil, errors.Internal(err)
	}
	return png, nil
}

// sheetName trims a name to the 31 characters a worksheet name allows
func sheetName(name string) string {
	name = strings.NewReplacer(":", "", "\\", "", "/", "", "?", "", "*", "", "[", "", "]", "").Replace(name)
	if len(name) > 31 {
		name = name[:31]
	}
	return name
}

func writeSheet(f *excelize.File, sheet string, headers []interface{}, rows [][]interface{}) error {
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func workbookBytes(f *excelize.File) ([]byte, error) {
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, errors.Internal(err)
	}
	return buf.Bytes(), nil
}
