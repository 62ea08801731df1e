package feed

import (
	"testing"
	"time"
)

func TestParseRSS2(t *testing.T) {
	rssData := `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Test Feed</title>
    <link>https://example.com</link>
    <description>Test Description</description>
    <item>
      <title>First Post</title>
      <link>https://example.com/posts/1?utm_source=rss</link>
      <description>Description of the first post</description>
      <pubDate>Mon, 03 Jul 2023 12:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Second Post</title>
      <link>https://example.com/posts/2</link>
      <description>Description of the second post</description>
      <pubDate>Mon, 03 Jul 2023 11:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Third Post</title>
      <link>https://example.com/posts/3</link>
      <description>Description of the third post</description>
      <pubDate>Mon, 03 Jul 2023 10:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Broken entry without a link</title>
      <description>Should be dropped, not abort the parse</description>
    </item>
  </channel>
</rss>`

	parser := NewParser()
	items := parser.Run([]byte(rssData))

	if len(items) != 3 {
		t.Fatalf("Expected 3 items, got: %d", len(items))
	}

	item := items[0]
	if item.Title != "First Post" {
		t.Errorf("Expected title 'First Post', got: %s", item.Title)
	}
	if item.Link != "https://example.com/posts/1" {
		t.Errorf("Expected canonical link without query, got: %s", item.Link)
	}
	if item.Snippet != "Description of the first post" {
		t.Errorf("Expected snippet from description, got: %s", item.Snippet)
	}
	if item.PublishedAt == nil {
		t.Fatal("Expected publish time to be set")
	}
	expected := time.Date(2023, 7, 3, 12, 0, 0, 0, time.UTC)
	if !item.PublishedAt.Equal(expected) {
		t.Errorf("Expected publish time %v, got: %v", expected, item.PublishedAt)
	}
	if item.ContentHash == "" {
		t.Error("Expected content hash to be generated")
	}
	if item.ContentHash != Fingerprint(item.Link) {
		t.Error("Expected content hash derived from canonical link")
	}
}

func TestParseAtom(t *testing.T) {
	atomData := `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Test Atom Feed</title>
  <link href="https://example.com"/>
  <updated>2023-07-03T12:00:00Z</updated>
  <id>urn:uuid:1234567890</id>
  <entry>
    <title>First Post</title>
    <link href="https://example.com/posts/1"/>
    <id>urn:uuid:entry-1</id>
    <published>2023-07-03T12:00:00Z</published>
    <updated>2023-07-03T12:30:00Z</updated>
    <content type="html">Body of the first post</content>
  </entry>
  <entry>
    <title>Second Post</title>
    <link href="https://example.com/posts/2"/>
    <id>urn:uuid:entry-2</id>
    <updated>2023-07-03T11:00:00Z</updated>
    <summary>Summary of the second post</summary>
  </entry>
  <entry>
    <title>Third Post</title>
    <link href="https://example.com/posts/3"/>
    <id>urn:uuid:entry-3</id>
    <updated>2023-07-03T10:00:00Z</updated>
  </entry>
</feed>`

	parser := NewParser()
	items := parser.Run([]byte(atomData))

	if len(items) != 3 {
		t.Fatalf("Expected 3 items, got: %d", len(items))
	}

	titles := []string{"First Post", "Second Post", "Third Post"}
	for i, expected := range titles {
		if items[i].Title != expected {
			t.Errorf("Expected title %q at index %d, got: %s", expected, i, items[i].Title)
		}
	}

	// href attribute becomes the link
	if items[0].Link != "https://example.com/posts/1" {
		t.Errorf("Expected link from href attribute, got: %s", items[0].Link)
	}

	// published wins over updated when both are present
	published := time.Date(2023, 7, 3, 12, 0, 0, 0, time.UTC)
	if items[0].PublishedAt == nil || !items[0].PublishedAt.Equal(published) {
		t.Errorf("Expected published timestamp %v, got: %v", published, items[0].PublishedAt)
	}

	// updated is the fallback when published is absent
	updated := time.Date(2023, 7, 3, 11, 0, 0, 0, time.UTC)
	if items[1].PublishedAt == nil || !items[1].PublishedAt.Equal(updated) {
		t.Errorf("Expected updated fallback %v, got: %v", updated, items[1].PublishedAt)
	}
}

func TestParseUnreadableDocument(t *testing.T) {
	parser := NewParser()

	items := parser.Run([]byte("this is not xml at all"))

	if len(items) != 0 {
		t.Errorf("Expected empty item list for unreadable document, got %d items", len(items))
	}
}

func TestParseSnippetFallsBackToContent(t *testing.T) {
	rssData := `<?xml version="1.0"?>
<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/">
  <channel>
    <title>Test Feed</title>
    <link>https://example.com</link>
    <description>Test</description>
    <item>
      <title>Post</title>
      <link>https://example.com/posts/1</link>
      <content:encoded><![CDATA[<p>Full <b>body</b> text</p>]]></content:encoded>
    </item>
  </channel>
</rss>`

	parser := NewParser()
	items := parser.Run([]byte(rssData))

	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got: %d", len(items))
	}
	if items[0].Snippet != "Full body text" {
		t.Errorf("Expected snippet built from content:encoded, got: %q", items[0].Snippet)
	}
	if items[0].PublishedAt != nil {
		t.Errorf("Expected nil publish time when pubDate is absent, got: %v", items[0].PublishedAt)
	}
}
