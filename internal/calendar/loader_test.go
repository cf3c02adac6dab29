package calendar

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type LoaderTestSuite struct {
	suite.Suite
	loader *Loader
	dir    string
}

func TestLoaderSuite(t *testing.T) {
	suite.Run(t, new(LoaderTestSuite))
}

func (suite *LoaderTestSuite) SetupTest() {
	loader, err := NewLoader(nil)
	suite.Require().NoError(err)

	suite.loader = loader
	suite.dir = suite.T().TempDir()
}

func (suite *LoaderTestSuite) TearDownTest() {
	suite.NoError(suite.loader.Close())
}

func (suite *LoaderTestSuite) write(name, content string) string {
	path := filepath.Join(suite.dir, name)
	suite.Require().NoError(os.WriteFile(path, []byte(content), 0644))

	return path
}

func (suite *LoaderTestSuite) TestLoadHighImpact() {
	path := suite.write("calendar_2025.csv", `datetime_utc,event,impact
2025-01-10T13:30:00Z,Non-Farm Payrolls,High
2025-01-15T13:30:00Z,CPI,high
2025-01-10T13:30:00Z,Unemployment Rate,High
2025-01-20T09:00:00Z,Sentiment,Medium
bad,Broken,High
2025-01-05T10:00:00Z,Rate decision,3
`)

	events, err := suite.loader.LoadHighImpact(path)
	suite.Require().NoError(err)
	suite.Require().Len(events, 3)

	suite.Equal(time.Date(2025, 1, 5, 10, 0, 0, 0, time.UTC), events[0].Time)
	suite.Equal("Non-Farm Payrolls", events[1].Title)
	suite.Equal(time.Date(2025, 1, 15, 13, 30, 0, 0, time.UTC), events[2].Time)
}

func (suite *LoaderTestSuite) TestColumnAliases() {
	path := suite.write("aliases.csv", `Datetime,Importance
2025-02-07 13:30:00,High
2025-02-08 13:30:00,Low
`)

	events, err := suite.loader.LoadHighImpact(path)
	suite.Require().NoError(err)
	suite.Require().Len(events, 1)
	suite.Equal("", events[0].Title)
	suite.Equal(time.Date(2025, 2, 7, 13, 30, 0, 0, time.UTC), events[0].Time)
}

func (suite *LoaderTestSuite) TestMissingFile() {
	events, err := suite.loader.LoadHighImpact(filepath.Join(suite.dir, "missing.csv"))
	suite.NoError(err)
	suite.Nil(events)
}

func (suite *LoaderTestSuite) TestFindForYear() {
	suite.write(FileName(2024), "datetime_utc,impact\n")

	path, ok := FindForYear([]string{filepath.Join(suite.dir, "nope"), suite.dir}, 2024)
	suite.True(ok)
	suite.Equal(filepath.Join(suite.dir, "calendar_2024.csv"), path)

	_, ok = FindForYear([]string{suite.dir}, 2023)
	suite.False(ok)
}
