package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"strconv"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// PNG page geometry in pixels
const (
	cellW        = 26
	cellH        = 20
	monthW       = WeekdayCols * cellW
	monthTitleH  = 20
	weekdayHeadH = 16
	monthH       = monthTitleH + weekdayHeadH + MaxMonthRows*cellH
	gap          = 16
	margin       = 20
	titleH       = 30
	legendLineH  = 18
	swatch       = 12
)

var (
	colorBackground = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	colorText       = color.RGBA{R: 0x20, G: 0x20, B: 0x20, A: 0xff}
	colorMuted      = color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}
	colorHoliday    = color.RGBA{R: 0xc0, G: 0x00, B: 0x00, A: 0xff}
	colorGrid       = color.RGBA{R: 0xe6, G: 0xe6, B: 0xe6, A: 0xff}
)

// PageSize returns the pixel size of the PNG page for cal
func PageSize(cal *Calendar) image.Point {
	w := 2*margin + PageCols*monthW + (PageCols-1)*gap
	h := margin + titleH + PageRows*monthH + (PageRows-1)*gap + gap + len(cal.Legend)*legendLineH + margin
	return image.Pt(w, h)
}

// DrawImage paints cal onto a new RGBA image
func DrawImage(cal *Calendar) *image.RGBA {
	size := PageSize(cal)
	img := image.NewRGBA(image.Rect(0, 0, size.X, size.Y))
	fill(img, img.Bounds(), colorBackground)

	face := basicfont.Face7x13
	drawCentered(img, face, cal.Title, size.X/2, margin+titleH/2+5, colorText)

	top := margin + titleH
	for _, m := range cal.Months {
		x0 := margin + m.PageCol*(monthW+gap)
		y0 := top + m.PageRow*(monthH+gap)
		drawMonth(img, face, m, cal.Legend, x0, y0)
	}

	ly := top + PageRows*monthH + (PageRows-1)*gap + gap
	for _, le := range cal.Legend {
		fill(img, image.Rect(margin, ly+3, margin+swatch, ly+3+swatch), le.Color)
		label := le.Label
		if len(le.Streams) > 0 {
			label += fmt.Sprintf(" (%s)", strings.Join(le.Streams, ", "))
		}
		drawText(img, face, label, margin+swatch+8, ly+13, colorText)
		ly += legendLineH
	}
	return img
}

// WritePNG encodes cal as a PNG image to w
func WritePNG(w io.Writer, cal *Calendar) error {
	if err := png.Encode(w, DrawImage(cal)); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

func drawMonth(img *image.RGBA, face font.Face, m Month, legend []LegendEntry, x0, y0 int) {
	drawCentered(img, face, m.Name, x0+monthW/2, y0+14, colorText)

	hy := y0 + monthTitleH
	for i, name := range WeekdayNames {
		drawCentered(img, face, name, x0+i*cellW+cellW/2, hy+12, colorMuted)
	}

	gy := hy + weekdayHeadH
	for _, c := range m.Cells {
		r := image.Rect(x0+c.Col*cellW, gy+c.Row*cellH, x0+(c.Col+1)*cellW, gy+(c.Row+1)*cellH)
		if c.Highlighted() {
			fill(img, r.Inset(1), legend[c.Route].Color)
		} else {
			outline(img, r, colorGrid)
		}

		textColor := colorText
		switch {
		case c.Highlighted():
			textColor = colorBackground
		case c.Holiday != "" || c.Col == WeekdayCols-1:
			textColor = colorHoliday
		}
		drawCentered(img, face, strconv.Itoa(c.Day), r.Min.X+cellW/2, r.Min.Y+14, textColor)
	}
}

func fill(img *image.RGBA, r image.Rectangle, c color.Color) {
	draw.Draw(img, r, &image.Uniform{C: c}, image.Point{}, draw.Src)
}

func outline(img *image.RGBA, r image.Rectangle, c color.Color) {
	for x := r.Min.X; x < r.Max.X; x++ {
		img.Set(x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.Set(r.Max.X-1, y, c)
	}
}

func drawText(img *image.RGBA, face font.Face, s string, x, y int, c color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

func drawCentered(img *image.RGBA, face font.Face, s string, cx, y int, c color.Color) {
	w := font.MeasureString(face, s).Ceil()
	drawText(img, face, s, cx-w/2, y, c)
}
