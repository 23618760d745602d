package notion

import "github.com/starford/notedown/internal/models"

// Wire-format types for the content API. Only the fields the sync reads
// are declared; everything else is ignored by the JSON decoder.

type queryResponse struct {
	Results []wirePage `json:"results"`
}

type blocksResponse struct {
	Results []wireBlock `json:"results"`
}

type wirePage struct {
	ID             string                  `json:"id"`
	CreatedTime    string                  `json:"created_time"`
	LastEditedTime string                  `json:"last_edited_time"`
	Properties     map[string]wireProperty `json:"properties"`
}

type wireProperty struct {
	Type        string         `json:"type"`
	Title       []wireRichText `json:"title"`
	MultiSelect []wireOption   `json:"multi_select"`
	Date        *wireDateValue `json:"date"`
}

type wireOption struct {
	Name string `json:"name"`
}

type wireDateValue struct {
	Start string `json:"start"`
}

type wireRichText struct {
	PlainText string `json:"plain_text"`
}

// toModel extracts the page summary: title from the first non-empty title
// run, tags from every multi-select property, publish date from the first
// date property's start value (calendar date), falling back to the
// creation date.
func (p wirePage) toModel() models.Page {
	page := models.Page{
		ID:         p.ID,
		Date:       calendarDate(p.CreatedTime),
		LastEdited: p.LastEditedTime,
	}
	dateSet := false
	for _, prop := range p.Properties {
		switch prop.Type {
		case "title":
			if page.Title != "" {
				continue
			}
			for _, run := range prop.Title {
				if run.PlainText != "" {
					page.Title = run.PlainText
					break
				}
			}
		case "multi_select":
			for _, opt := range prop.MultiSelect {
				page.Tags = append(page.Tags, opt.Name)
			}
		case "date":
			if !dateSet && prop.Date != nil && prop.Date.Start != "" {
				page.Date = calendarDate(prop.Date.Start)
				dateSet = true
			}
		}
	}
	return page
}

// calendarDate truncates an ISO-8601 instant or date to its YYYY-MM-DD
// prefix.
func calendarDate(iso string) string {
	if len(iso) > 10 {
		return iso[:10]
	}
	return iso
}

type wireBlock struct {
	Type     string        `json:"type"`
	Para     *wireRichBody `json:"paragraph"`
	Heading1 *wireRichBody `json:"heading_1"`
	Heading2 *wireRichBody `json:"heading_2"`
	Heading3 *wireRichBody `json:"heading_3"`
	Bulleted *wireRichBody `json:"bulleted_list_item"`
	Numbered *wireRichBody `json:"numbered_list_item"`
	Quote    *wireRichBody `json:"quote"`
	Code     *wireCode     `json:"code"`
	Image    *wireImage    `json:"image"`
}

type wireRichBody struct {
	RichText []wireRichText `json:"rich_text"`
}

func (b *wireRichBody) plainText() string {
	if b == nil {
		return ""
	}
	var out string
	for _, run := range b.RichText {
		out += run.PlainText
	}
	return out
}

type wireCode struct {
	wireRichBody
	Language string `json:"language"`
}

type wireImage struct {
	Type     string       `json:"type"`
	External *wireFileRef `json:"external"`
	File     *wireFileRef `json:"file"`
}

type wireFileRef struct {
	URL string `json:"url"`
}

// toModel maps a wire block onto the closed Block variant. Unrecognised
// types become BlockUnsupported, which renders to nothing.
func (b wireBlock) toModel() models.Block {
	switch b.Type {
	case "paragraph":
		return models.Block{Kind: models.BlockParagraph, Text: b.Para.plainText()}
	case "heading_1":
		return models.Block{Kind: models.BlockHeading1, Text: b.Heading1.plainText()}
	case "heading_2":
		return models.Block{Kind: models.BlockHeading2, Text: b.Heading2.plainText()}
	case "heading_3":
		return models.Block{Kind: models.BlockHeading3, Text: b.Heading3.plainText()}
	case "bulleted_list_item":
		return models.Block{Kind: models.BlockBulleted, Text: b.Bulleted.plainText()}
	case "numbered_list_item":
		return models.Block{Kind: models.BlockNumbered, Text: b.Numbered.plainText()}
	case "quote":
		return models.Block{Kind: models.BlockQuote, Text: b.Quote.plainText()}
	case "code":
		blk := models.Block{Kind: models.BlockCode}
		if b.Code != nil {
			blk.Text = b.Code.plainText()
			blk.Language = b.Code.Language
		}
		return blk
	case "image":
		blk := models.Block{Kind: models.BlockImage, ImageKind: models.ImageNone}
		if b.Image != nil {
			switch b.Image.Type {
			case "external":
				if b.Image.External != nil {
					blk.ImageKind = models.ImageExternal
					blk.ImageURL = b.Image.External.URL
				}
			case "file":
				if b.Image.File != nil {
					blk.ImageKind = models.ImageHosted
					blk.ImageURL = b.Image.File.URL
				}
			}
		}
		return blk
	default:
		return models.Block{Kind: models.BlockUnsupported}
	}
}
