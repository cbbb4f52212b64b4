package services_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/xuri/excelize/v2"

	"github.com/jkilzi/taskqueue/internal/services"
)

const crimeHeader = "lsoa_code,borough,major_category,minor_category,value,year,month\n"

var crimeRows = []string{
	"E01001116,Croydon,Burglary,Burglary in Other Buildings,5,2013,1",
	"E01001116,Croydon,Theft and Handling,Other Theft,10,2013,2",
	"E01004563,Westminster,Theft and Handling,Other Theft,20,2014,1",
	"E01004563,Westminster,Sexual Offences,Rape,1,2015,1",
	"E01004563,Westminster,Burglary,Burglary in a Dwelling,3,2016,1",
}

var _ = Describe("Crimes", func() {
	var (
		ctx context.Context
		svc *services.Crimes
	)

	BeforeEach(func() {
		ctx = context.Background()
		svc = services.NewCrimesService(2)
	})

	// Given a crime CSV with a header
	// When it is aggregated
	// Then every question is answered from the totals
	It("should answer every question", func() {
		report, err := svc.ReportFrom(ctx, strings.NewReader(crimeHeader+strings.Join(crimeRows, "\n")+"\n"))
		Expect(err).NotTo(HaveOccurred())

		Expect(report.Rows).To(Equal(5))
		Expect(report.LeastCommonCrime).To(Equal("Sexual Offences"))
		Expect(report.MostDangerousBorough).To(Equal("Westminster"))
		Expect(report.MostCommonCrimeByBorough).To(Equal(map[string]string{
			"Croydon":     "Theft and Handling",
			"Westminster": "Theft and Handling",
		}))
		Expect(report.TotalsByYear).To(Equal(map[int]int{2013: 15, 2014: 20, 2015: 1, 2016: 3}))
		Expect(report.TrendWindow).To(Equal(4))
		Expect(report.Increasing).To(BeFalse())
	})

	It("should only look at the most recent years for the trend", func() {
		svc = services.NewCrimesService(2, services.WithTrendWindow(2))

		report, err := svc.ReportFrom(ctx, strings.NewReader(strings.Join(crimeRows, "\n")))
		Expect(err).NotTo(HaveOccurred())
		Expect(report.Rows).To(Equal(5))
		Expect(report.Increasing).To(BeTrue())
	})

	It("should break ties alphabetically", func() {
		csv := crimeHeader +
			"E1,Barnet,Robbery,Personal Property,2,2016,1\n" +
			"E1,Barnet,Drugs,Possession,2,2016,1\n"

		report, err := svc.ReportFrom(ctx, strings.NewReader(csv))
		Expect(err).NotTo(HaveOccurred())
		Expect(report.LeastCommonCrime).To(Equal("Drugs"))
		Expect(report.MostCommonCrimeByBorough["Barnet"]).To(Equal("Drugs"))
	})

	DescribeTable("should reject malformed rows",
		func(row, message string) {
			_, err := svc.ReportFrom(ctx, strings.NewReader(crimeHeader+row+"\n"))
			Expect(err).To(MatchError(ContainSubstring(message)))
		},
		Entry("missing columns", "E1,Barnet,Robbery", "expected 7 columns, got 3"),
		Entry("non numeric value", "E1,Barnet,Robbery,Personal Property,two,2016,1", `invalid value "two"`),
		Entry("non numeric year", "E1,Barnet,Robbery,Personal Property,2,later,1", `invalid year "later"`),
	)

	It("should report the file line of a malformed row after a multi-line field", func() {
		csv := crimeHeader +
			"E1,Barnet,Robbery,\"Personal\nProperty\",2,2016,1\n" +
			"E1,Barnet,Robbery,Personal Property,two,2016,1\n"

		_, err := svc.ReportFrom(ctx, strings.NewReader(csv))
		Expect(err).To(MatchError(HavePrefix("line 4: ")))
	})

	It("should merge several files", func() {
		root := GinkgoT().TempDir()
		first := filepath.Join(root, "first.csv")
		second := filepath.Join(root, "second.csv")
		Expect(os.WriteFile(first, []byte(crimeHeader+strings.Join(crimeRows[:2], "\n")), 0o644)).To(Succeed())
		Expect(os.WriteFile(second, []byte(crimeHeader+strings.Join(crimeRows[2:], "\n")), 0o644)).To(Succeed())

		report, err := svc.Report(ctx, first, second)
		Expect(err).NotTo(HaveOccurred())

		single, err := svc.ReportFrom(ctx, strings.NewReader(strings.Join(crimeRows, "\n")))
		Expect(err).NotTo(HaveOccurred())
		Expect(report).To(Equal(single))
	})

	It("should fail when a file is missing", func() {
		_, err := svc.Report(ctx, filepath.Join(GinkgoT().TempDir(), "missing.csv"))
		Expect(err).To(HaveOccurred())
	})

	It("should export the report as a workbook", func() {
		report, err := svc.ReportFrom(ctx, strings.NewReader(crimeHeader+strings.Join(crimeRows, "\n")))
		Expect(err).NotTo(HaveOccurred())

		path := filepath.Join(GinkgoT().TempDir(), "report.xlsx")
		Expect(services.ExportCrimeReport(report, path)).To(Succeed())

		f, err := excelize.OpenFile(path)
		Expect(err).NotTo(HaveOccurred())
		defer f.Close()

		Expect(f.GetSheetList()).To(Equal([]string{"Summary", "Boroughs", "Years"}))

		least, err := f.GetCellValue("Summary", "B2")
		Expect(err).NotTo(HaveOccurred())
		Expect(least).To(Equal("Sexual Offences"))

		borough, err := f.GetCellValue("Boroughs", "A2")
		Expect(err).NotTo(HaveOccurred())
		Expect(borough).To(Equal("Croydon"))

		total, err := f.GetCellValue("Years", "B3")
		Expect(err).NotTo(HaveOccurred())
		Expect(total).To(Equal("20"))
	})
})
