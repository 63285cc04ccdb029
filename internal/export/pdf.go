package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"

	"mealplan-admin-service/internal/analytics"
)

const topRows = 10

// Filename is the download name offered for a report rendered at generatedAt.
func Filename(generatedAt time.Time) string {
	return fmt.Sprintf("analytics_%s.pdf", generatedAt.Format("20060102_150405"))
}

// RenderReport lays the dashboard out on A4 pages: headline metrics first,
// then the trend series and the ranked lists.
func RenderReport(report *analytics.Report, generatedAt time.Time) ([]byte, error) {
	if report == nil {
		return nil, fmt.Errorf("render report: nil report")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(12, 12, 12)
	pdf.SetAutoPageBreak(true, 12)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 8, "Admin Analytics Summary", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 5, "Generated "+generatedAt.Format("2006-01-02 15:04 MST"), "", 1, "C", false, 0, "")
	pdf.Ln(3)

	section(pdf, "Users")
	pairs(pdf, [][2]string{
		{"Total users", count(report.TotalUsers)},
		{"Verified / unverified", fmt.Sprintf("%d / %d", report.VerifiedUsers, report.UnverifiedUsers)},
		{"Active (7 days)", fmt.Sprintf("%d", report.ActiveUsersToday)},
		{"Created today", count(report.UsersCreatedToday)},
		{"Created last 7 days", count(report.UsersCreatedLast7Days)},
		{"Users growth", percent(report.UsersGrowth)},
	})

	section(pdf, "Orders")
	pairs(pdf, [][2]string{
		{"Total orders", count(report.TotalOrders)},
		{"Orders today", count(report.OrdersToday)},
		{"Total revenue", money(report.TotalRevenue)},
		{"Average order value", money(report.AverageOrderValue)},
		{"Revenue growth", percent(report.RevenueGrowth)},
		{"Orders growth", percent(report.OrdersGrowth)},
	})

	section(pdf, "Customers")
	pairs(pdf, [][2]string{
		{"Conversion rate", percent(report.ConversionRate)},
		{"Repeat customer rate", percent(report.RepeatCustomerRate)},
		{"Repeat customers", fmt.Sprintf("%d", report.RepeatCustomersCount)},
		{"Customers with orders", fmt.Sprintf("%d", report.UsersWithOrdersCount)},
		{"Orders per customer", fmt.Sprintf("%.1f", report.AvgOrdersPerUser)},
	})

	section(pdf, "Catalog")
	pairs(pdf, [][2]string{
		{"Total meals", count(report.TotalMeals)},
		{"Meals per user", fmt.Sprintf("%.1f", report.MealsPerUser)},
		{"Total favorites", count(report.TotalFavorites)},
		{"Favorites per user", fmt.Sprintf("%.1f", report.AvgFavoritesPerUser)},
	})

	revenue := make([][]string, 0, len(report.RevenueData))
	for i, p := range report.RevenueData {
		orders := int64(0)
		if i < len(report.OrderTrends) {
			orders = report.OrderTrends[i].Orders
		}
		revenue = append(revenue, []string{p.Date, money(p.Revenue), fmt.Sprintf("%d", orders)})
	}
	table(pdf, "Revenue and orders, last 14 days", []string{"Day", "Revenue", "Orders"}, []float64{60, 60, 0}, revenue)

	growth := make([][]string, 0, len(report.UserGrowth))
	for _, p := range report.UserGrowth {
		growth = append(growth, []string{p.Day, count(p.Users)})
	}
	table(pdf, "New users, last 7 days", []string{"Day", "Users"}, []float64{60, 0}, growth)

	selling := make([][]string, 0, len(report.TopSellingMeals))
	for _, m := range limit(report.TopSellingMeals) {
		selling = append(selling, []string{m.MealName, count(m.TotalQuantity), count(m.OrderCount), money(m.TotalRevenue)})
	}
	table(pdf, "Top selling meals", []string{"Meal", "Qty", "Orders", "Revenue"}, []float64{90, 25, 25, 0}, selling)

	favorites := make([][]string, 0, len(report.FavoriteMeals))
	for _, m := range limit(report.FavoriteMeals) {
		favorites = append(favorites, []string{m.Name, count(m.Count)})
	}
	table(pdf, "Most favorited meals", []string{"Meal", "Favorites"}, []float64{120, 0}, favorites)

	tags := make([][]string, 0, len(report.PopularTags))
	for _, t := range limit(report.PopularTags) {
		tags = append(tags, []string{t.Tag, count(t.Count)})
	}
	table(pdf, "Popular tags", []string{"Tag", "Meals"}, []float64{120, 0}, tags)

	recent := make([][]string, 0, len(report.RecentOrders))
	for _, o := range report.RecentOrders {
		recent = append(recent, []string{
			o.OrderDate.Format("2006-01-02 15:04"),
			o.UserName,
			fmt.Sprintf("%d", o.ItemCount),
			money(o.TotalAmount),
			o.PaymentStatus,
		})
	}
	table(pdf, "Recent orders", []string{"Date", "Customer", "Items", "Total", "Payment"}, []float64{38, 62, 18, 32, 0}, recent)

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return out.Bytes(), nil
}

func section(pdf *gofpdf.Fpdf, title string) {
	pdf.Ln(2)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(0, 6, title, "B", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 9)
}

func pairs(pdf *gofpdf.Fpdf, rows [][2]string) {
	for _, row := range rows {
		pdf.CellFormat(70, 5, row[0], "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 5, row[1], "", 1, "L", false, 0, "")
	}
}

// table writes a header row and the body; a zero width takes the rest of the line.
func table(pdf *gofpdf.Fpdf, title string, header []string, widths []float64, rows [][]string) {
	section(pdf, title)
	if len(rows) == 0 {
		pdf.CellFormat(0, 5, "No data", "", 1, "L", false, 0, "")
		return
	}
	pdf.SetFont("Arial", "B", 9)
	for i, h := range header {
		pdf.CellFormat(widths[i], 5, h, "B", lineEnd(i, len(header)), "L", false, 0, "")
	}
	pdf.SetFont("Arial", "", 9)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	for _, row := range rows {
		for i, cell := range row {
			pdf.CellFormat(widths[i], 5, tr(clip(cell, 48)), "", lineEnd(i, len(row)), "L", false, 0, "")
		}
	}
}

func lineEnd(i, n int) int {
	if i == n-1 {
		return 1
	}
	return 0
}

func clip(value string, max int) string {
	value = strings.TrimSpace(value)
	r := []rune(value)
	if len(r) <= max {
		return value
	}
	return string(r[:max-1]) + "~"
}

func limit[T any](values []T) []T {
	if len(values) > topRows {
		return values[:topRows]
	}
	return values
}

func count(n int64) string {
	return fmt.Sprintf("%d", n)
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}
