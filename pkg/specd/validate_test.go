package specd

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validate(t *testing.T, cat *Catalog, opts Options) *Report {
	t.Helper()
	report, err := Validate(context.Background(), cat, opts)
	require.NoError(t, err)
	require.NotNil(t, report)
	return report
}

func TestValidateValidCatalog(t *testing.T) {
	cat := newTestCatalog(t,
		"time,phi,theta,FILE\n"+
			"0,1.5,-90,img/0.png\n"+
			"1,2.5,-45,img/1.png\n",
		"img/0.png", "img/1.png")

	report := validate(t, cat, DefaultOptions())
	assert.True(t, report.Passed())
	assert.Empty(t, report.Errors())
	assert.Empty(t, report.Warnings())
	assert.Equal(t, 2, report.Rows)
	assert.Equal(t, 2, report.FilesReferenced)
	assert.Equal(t, 2, report.FilesFound)
	assert.Equal(t, TypeVector{TypeInteger, TypeFloat, TypeInteger, TypeString}, report.Types)

	counts := report.WithCode(CodeFileCount)
	require.Len(t, counts, 1)
	assert.Equal(t, SeverityInfo, counts[0].Severity)
	assert.Equal(t, "2 of 2 referenced files found", counts[0].Message)
}

func TestValidateDuplicateLabel(t *testing.T) {
	cat := newTestCatalog(t, "a,b,a\n1,2,3\n")

	report := validate(t, cat, DefaultOptions())
	assert.False(t, report.Passed())

	dups := report.WithCode(CodeDuplicateLabel)
	require.Len(t, dups, 1)
	assert.Equal(t, SeverityError, dups[0].Severity)
	assert.Equal(t, 0, dups[0].Row)
	assert.Equal(t, 2, dups[0].Column)
}

func TestValidateNullAndEmptyLabelsAreDistinct(t *testing.T) {
	// Both labels fail the type check, but they are not duplicates.
	cat := newTestCatalog(t, "a,,\"\"\n1,2,3\n")

	report := validate(t, cat, DefaultOptions())
	assert.Empty(t, report.WithCode(CodeDuplicateLabel))
	// null is EMPTY; "" is STRING
	types := report.WithCode(CodeHeaderType)
	require.Len(t, types, 1)
	assert.Equal(t, 1, types[0].Column)
}

func TestValidateNumericHeader(t *testing.T) {
	cat := newTestCatalog(t, "a,12,3.5,nan\n1,2,3,4\n")

	report := validate(t, cat, DefaultOptions())
	assert.False(t, report.Passed())

	var cols []int
	for _, f := range report.WithCode(CodeHeaderType) {
		cols = append(cols, f.Column)
	}
	assert.Equal(t, []int{1, 2, 3}, cols)
}

func TestValidateEmptyPromotion(t *testing.T) {
	cat := newTestCatalog(t,
		"a,b,c\n"+
			"1,,x\n"+
			"2,3.5,y\n"+
			"3,4.5,z\n"+
			"4,,w\n")

	report := validate(t, cat, DefaultOptions())
	assert.True(t, report.Passed())

	deferred := report.WithCode(CodeDeferredType)
	require.Len(t, deferred, 1)
	assert.Equal(t, SeverityInfo, deferred[0].Severity)
	assert.Equal(t, 1, deferred[0].Column)

	promoted := report.WithCode(CodeTypePromotion)
	require.Len(t, promoted, 1, "promotion is recorded exactly once")
	assert.Equal(t, SeverityInfo, promoted[0].Severity)
	assert.Equal(t, 2, promoted[0].Row)
	assert.Contains(t, promoted[0].Message, "(INTEGER, EMPTY, STRING)")
	assert.Contains(t, promoted[0].Message, "(INTEGER, FLOAT, STRING)")

	assert.Equal(t, TypeVector{TypeInteger, TypeFloat, TypeString}, report.Types)
}

func TestValidateFileColumnPlacement(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		files  []string
		passed bool
		errs   int
	}{
		{
			name:   "contiguous trailing",
			data:   "a,b,FILE,FILE2\n1,2,x.png,y.png\n",
			files:  []string{"x.png", "y.png"},
			passed: true,
		},
		{
			name:   "not trailing",
			data:   "a,FILE,b\n1,x.png,2\n",
			files:  []string{"x.png"},
			passed: false,
			errs:   1,
		},
		{
			name:   "gap",
			data:   "FILE,a,FILE2\nx.png,1,y.png\n",
			files:  []string{"x.png", "y.png"},
			passed: false,
			errs:   1,
		},
		{
			name:   "gap and not trailing",
			data:   "FILE,a,FILE2,b\nx.png,1,y.png,2\n",
			files:  []string{"x.png", "y.png"},
			passed: false,
			errs:   2,
		},
		{
			name:   "no file columns",
			data:   "a,b\n1,2\n",
			passed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat := newTestCatalog(t, tt.data, tt.files...)
			report := validate(t, cat, DefaultOptions())
			assert.Equal(t, tt.passed, report.Passed())
			assert.Len(t, report.WithCode(CodeFilePlacement), tt.errs)
		})
	}
}

func TestValidateMissingFileAndNaN(t *testing.T) {
	cat := newTestCatalog(t,
		"id,val,FILE\n"+
			"1,2.5,img/a.png\n"+
			"2,nan,img/b.png\n",
		"img/a.png")

	report := validate(t, cat, DefaultOptions())
	assert.False(t, report.Passed())

	missing := report.WithCode(CodeMissingFile)
	require.Len(t, missing, 1)
	assert.Equal(t, 2, missing[0].Row)
	assert.Equal(t, 2, missing[0].Column)
	assert.Contains(t, missing[0].Message, filepath.Join("img", "b.png"))

	// nan is a FLOAT, matching the running type of val.
	assert.Empty(t, report.WithCode(CodeTypeMismatch))
	assert.Equal(t, 1, report.FilesFound)
	assert.Equal(t, 2, report.FilesReferenced)
	assert.Equal(t, "1 of 2 referenced files found", report.WithCode(CodeFileCount)[0].Message)
}

func TestValidateNaNInStringColumn(t *testing.T) {
	cat := newTestCatalog(t, "id,name\n1,alpha\n2,NaN\n3,7\n")

	report := validate(t, cat, DefaultOptions())
	mismatches := report.WithCode(CodeTypeMismatch)
	require.Len(t, mismatches, 1, "NaN is accepted in a STRING column, 7 is not")
	assert.Equal(t, 3, mismatches[0].Row)
	assert.Equal(t, 1, mismatches[0].Column)
}

func TestValidateRowChecks(t *testing.T) {
	cat := newTestCatalog(t,
		"a,b,FILE\n"+
			"1,x,f.png\n"+
			"2,y\n"+
			"3.5,z,f.png\n"+
			"4, w ,\n",
		"f.png")

	report := validate(t, cat, DefaultOptions())
	assert.False(t, report.Passed())

	counts := report.WithCode(CodeColumnCount)
	require.Len(t, counts, 1)
	assert.Equal(t, 2, counts[0].Row)

	short := report.WithCode(CodeFileColumnMissing)
	require.Len(t, short, 1)
	assert.Equal(t, 2, short[0].Row)

	mismatches := report.WithCode(CodeTypeMismatch)
	require.Len(t, mismatches, 1)
	assert.Equal(t, 3, mismatches[0].Row)
	assert.Equal(t, 0, mismatches[0].Column)

	ws := report.WithCode(CodeWhitespace)
	require.Len(t, ws, 1)
	assert.Equal(t, SeverityWarning, ws[0].Severity)
	assert.Equal(t, 4, ws[0].Row)

	// the null FILE value on row 4 is not a reference
	assert.Equal(t, 2, report.FilesReferenced)
	assert.Equal(t, 4, report.Rows)
}

func TestValidatePaddedNumber(t *testing.T) {
	cat := newTestCatalog(t, "id,score\n1,0.5\n 3,2.5\n")

	report := validate(t, cat, DefaultOptions())
	mismatches := report.WithCode(CodeTypeMismatch)
	require.Len(t, mismatches, 1, "a padded integer is a string")
	assert.Equal(t, 2, mismatches[0].Row)
	assert.Equal(t, 0, mismatches[0].Column)

	ws := report.WithCode(CodeWhitespace)
	require.Len(t, ws, 1)
	assert.Equal(t, 2, ws[0].Row)
}

func TestValidateFirstRow(t *testing.T) {
	t.Run("short first row", func(t *testing.T) {
		cat := newTestCatalog(t, "a,b,FILE\n1,2\n")
		report := validate(t, cat, Options{Quick: true})
		assert.False(t, report.Passed())
		assert.Len(t, report.WithCode(CodeColumnCount), 1)
		missing := report.WithCode(CodeFileColumnMissing)
		require.Len(t, missing, 1)
		assert.Equal(t, 1, missing[0].Row)
	})

	t.Run("numeric file column", func(t *testing.T) {
		cat := newTestCatalog(t, "a,FILE\n1,2\n")
		report := validate(t, cat, Options{Quick: true})
		assert.False(t, report.Passed())
		assert.Len(t, report.WithCode(CodeFileColumnType), 1)
	})

	t.Run("empty file column", func(t *testing.T) {
		cat := newTestCatalog(t, "a,FILE\n1,\n")
		report := validate(t, cat, Options{Quick: true})
		assert.True(t, report.Passed())
		assert.Len(t, report.WithCode(CodeDeferredType), 1)
	})
}

func TestValidateHeaderWhitespace(t *testing.T) {
	cat := newTestCatalog(t, "a, b, FILE\n1,2,x.png\n", "x.png")

	report := validate(t, cat, DefaultOptions())
	assert.True(t, report.Passed(), "warnings do not affect the verdict")
	assert.Len(t, report.WithCode(CodeHeaderWhitespace), 2)

	fileWS := report.WithCode(CodeFileWhitespace)
	require.Len(t, fileWS, 1)
	assert.Equal(t, 2, fileWS[0].Column)

	// " FILE" is not a file column, so x.png is never checked
	assert.Equal(t, 0, report.FilesReferenced)
}

func TestValidateQuick(t *testing.T) {
	cat := newTestCatalog(t, "a,FILE\n1,x.png\nnot-a-number,missing.png\n", "x.png")

	report := validate(t, cat, Options{Quick: true})
	assert.True(t, report.Passed())
	assert.Len(t, report.WithCode(CodeQuick), 1)
	assert.Empty(t, report.WithCode(CodeRowCount))
	assert.Equal(t, TypeVector{TypeInteger, TypeString}, report.Types)

	full := validate(t, cat, DefaultOptions())
	assert.False(t, full.Passed())
}

func TestValidateFatal(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{name: "empty file", data: "", want: ErrNoHeader},
		{name: "blank lines only", data: "\n\n", want: ErrNoHeader},
		{name: "header only", data: "a,b\n", want: ErrNoData},
		{name: "dangling quote in header", data: "\"a\"b,c\n1,2\n", want: ErrDanglingQuote},
		{name: "dangling quote in first row", data: "a,b\n\"1\"x,2\n", want: ErrNoData},
		{name: "dangling quote later", data: "a,b\n1,2\n3,\"4\"x\n", want: ErrDanglingQuote},
		{name: "quote after content", data: "a,b\n1,2\n3,4\"5\"\n", want: ErrQuoteAfterContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat := newTestCatalog(t, tt.data)
			report, err := Validate(context.Background(), cat, DefaultOptions())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			require.NotNil(t, report)
			assert.False(t, report.Passed())

			fs := report.Findings()
			require.NotEmpty(t, fs)
			assert.Equal(t, CodeFatal, fs[len(fs)-1].Code)
		})
	}
}

func TestValidateParseErrorPosition(t *testing.T) {
	cat := newTestCatalog(t, "a,b\n1,2\n3,\"4\"x\n")

	_, err := Validate(context.Background(), cat, DefaultOptions())
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 3, pe.Line)
	assert.Contains(t, err.Error(), "row #2")
}

func TestValidateOpenError(t *testing.T) {
	cat := NewCatalog(filepath.Join(t.TempDir(), "missing.cdb"))

	report, err := Validate(context.Background(), cat, DefaultOptions())
	assert.ErrorIs(t, err, ErrOpen)
	assert.False(t, report.Passed())

	dir := newTestCatalog(t, "a\n1\n")
	dir.DataFile = "."
	_, err = Validate(context.Background(), dir, DefaultOptions())
	assert.ErrorIs(t, err, ErrOpen, "a directory is not a data file")
}

func TestValidateCanceled(t *testing.T) {
	cat := newTestCatalog(t, "a\n1\n2\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Validate(ctx, cat, DefaultOptions())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestValidateIdempotent(t *testing.T) {
	cat := newTestCatalog(t,
		"id,val,FILE\n"+
			"1,,img/a.png\n"+
			"2,nan,img/b.png\n"+
			"x, 3 ,img/a.png\n",
		"img/a.png")

	first := validate(t, cat, DefaultOptions())
	second := validate(t, cat, DefaultOptions())
	assert.Equal(t, first.Passed(), second.Passed())
	assert.Equal(t, first.Findings(), second.Findings())
	assert.Equal(t, first.Types, second.Types)
}

func TestValidateLogsFindings(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	cat := newTestCatalog(t, "a,a\n1,2\n")
	report := validate(t, cat, Options{Logger: logger, Quick: true})

	entries := hook.AllEntries()
	require.Len(t, entries, len(report.Findings()), "every finding is logged once")

	var dup *logrus.Entry
	for _, e := range entries {
		if e.Data["code"] == CodeDuplicateLabel {
			dup = e
		}
	}
	require.NotNil(t, dup)
	assert.Equal(t, logrus.ErrorLevel, dup.Level)
	assert.Equal(t, 0, dup.Data["row"])
	assert.Equal(t, 1, dup.Data["column"])
	assert.Equal(t, cat.Root, dup.Data["catalog"])

	last := hook.LastEntry()
	assert.True(t, strings.HasPrefix(last.Message, "check failed"))
}
