package config

import (
	"fmt"
	"sort"

	"github.com/coreman2200/gridzilla/internal/layout"
	"github.com/coreman2200/gridzilla/internal/scene"
)

// Scene kinds a show may list.
const (
	KindBanner   = "banner"
	KindScroll   = "scroll"
	KindImage    = "image"
	KindMessages = "messages"
	KindQR       = "qr"
	KindSweep    = "sweep"
)

// SceneSpec is one entry of a show. Which fields apply depends on Kind.
type SceneSpec struct {
	Kind  string `yaml:"kind"`
	Name  string `yaml:"name,omitempty"`
	Color string `yaml:"color,omitempty"`

	Lines   []string `yaml:"lines,omitempty"`   // banner, qr caption
	Header  string   `yaml:"header,omitempty"`  // scroll
	Text    string   `yaml:"text,omitempty"`    // scroll
	Speed   int      `yaml:"speed,omitempty"`   // scroll, pixels per second
	Images  []string `yaml:"images,omitempty"`  // image
	Content string   `yaml:"content,omitempty"` // qr
	Samples []Sample `yaml:"samples,omitempty"` // messages

	PeriodMs  int `yaml:"period_ms,omitempty"`
	PerItemMs int `yaml:"per_item_ms,omitempty"`
}

type Sample struct {
	Recipient string `yaml:"recipient"`
	Message   string `yaml:"message"`
	Sender    string `yaml:"sender"`
	Color     string `yaml:"color,omitempty"`
}

func (s SceneSpec) validate() error {
	switch s.Kind {
	case KindBanner, KindScroll, KindImage, KindMessages, KindQR, KindSweep:
	default:
		return fmt.Errorf("%w: unknown scene kind %q", layout.ErrConfiguration, s.Kind)
	}
	if _, err := ParseColor(s.Color); err != nil {
		return err
	}
	for _, m := range s.Samples {
		if _, err := ParseColor(m.Color); err != nil {
			return err
		}
	}
	return nil
}

func (s SceneSpec) options() scene.Options {
	return scene.Options{Period: ms(s.PeriodMs), PerItemPeriod: ms(s.PerItemMs)}
}

// Show is a built scene list plus the scenes viewers can feed.
type Show struct {
	Name     string
	Scenes   []scene.Scene
	Messages []*scene.Messages
}

// ShowNames lists the configured shows, sorted.
func (c *Config) ShowNames() []string {
	out := make([]string, 0, len(c.Shows))
	for n := range c.Shows {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// BuildShow constructs the selected show's scenes. The mapper is only
// needed by sweep scenes and may be nil otherwise.
func (c *Config) BuildShow(env scene.Env, m *layout.Mapper) (*Show, error) {
	specs, ok := c.Shows[c.Show]
	if !ok {
		return nil, fmt.Errorf("%w: unknown show %q", layout.ErrConfiguration, c.Show)
	}
	if env.Canvas == nil {
		return nil, fmt.Errorf("%w: show %q has no canvas", layout.ErrConfiguration, c.Show)
	}
	if err := c.LayoutTopology().CheckCanvas(env.Canvas.W, env.Canvas.H); err != nil {
		return nil, err
	}
	show := &Show{Name: c.Show}
	load := scene.DirLoader(c.ImageDir)
	for i, s := range specs {
		if err := s.validate(); err != nil {
			return nil, fmt.Errorf("show %s scene %d: %w", c.Show, i, err)
		}
		name := s.Name
		if name == "" {
			name = fmt.Sprintf("%s-%d", s.Kind, i)
		}
		col, _ := ParseColor(s.Color)

		var sc scene.Scene
		switch s.Kind {
		case KindBanner:
			sc = scene.NewBanner(name, env, s.Lines, col, s.options())
		case KindScroll:
			sc = scene.NewScroll(name, env, s.Header, s.Text, col, s.Speed, s.options())
		case KindImage:
			sc = scene.NewImage(name, env, s.Images, load, s.options())
		case KindMessages:
			samples := make([]scene.Message, 0, len(s.Samples))
			for _, m := range s.Samples {
				mc, _ := ParseColor(m.Color)
				samples = append(samples, scene.Message{Recipient: m.Recipient, Text: m.Message, Sender: m.Sender, Color: mc})
			}
			msgs := scene.NewMessages(name, env, samples, s.options())
			show.Messages = append(show.Messages, msgs)
			sc = msgs
		case KindQR:
			sc = scene.NewQR(name, env, s.Content, s.Lines, col, s.options())
		case KindSweep:
			if m == nil {
				return nil, fmt.Errorf("%w: sweep scene %s needs the grid mapper", layout.ErrConfiguration, name)
			}
			sc = scene.NewSweep(name, env, m, s.options())
		}
		show.Scenes = append(show.Scenes, sc)
	}
	if len(show.Scenes) == 0 {
		return nil, fmt.Errorf("%w: show %q has no scenes", layout.ErrConfiguration, c.Show)
	}
	return show, nil
}

var teamMembers = "Mark Callegari, Chris Callegari, Blake Stewart, Chris Maloney, " +
	"Bill (K5EE) Jones, Ken & Min Vrana, Mike McCamon, Steve Bullard, " +
	"Matt, Jerry, Kathi, & Laurie."

var (
	welcome = SceneSpec{Kind: KindBanner, Name: "welcome", Color: "Dark Red", PeriodMs: 3000,
		Lines: []string{"Welcome to", "Holiday Lights", "on Farmstead Lane"}}
	goChiefs = SceneSpec{Kind: KindScroll, Name: "go-chiefs", Color: "Dark Red", PeriodMs: 5500,
		Header: "Go Kansas City Chiefs!", Text: "Go Chiefs!   Go Chiefs!   Go Chiefs!"}
	holidayImages = SceneSpec{Kind: KindImage, Name: "holiday-images", PeriodMs: 34000, PerItemMs: 3000,
		Images: []string{
			"Christmas Snoopy Tree 168x36 (2021 V2).png",
			"Snowman_Family_V4.png",
			"Sleigh 168x36 (2019 V3).png",
			"Snow Landscape 168x36 (2019 V3 Blue Background).png",
			"Winter Wonderland 168x36 (2019 V3 Blue Background).png",
			"Like Christmas 168x36 (2021 V2).png",
			"Sleigh Ride 268x36 (2019 V1).png",
			"Snowman_Family_Girl_V1.png",
			"brown paper packages.png",
			"jinglebells.png",
			"snowflake.png",
		}}
	train = SceneSpec{Kind: KindImage, Name: "train", PeriodMs: 29000, PerItemMs: 29000,
		Images: []string{"Train_2021_V2.png"}}
	thankYou = SceneSpec{Kind: KindScroll, Name: "thank-you", Color: "Pink", PeriodMs: 34000,
		Header: "Thank you volunteers!", Text: teamMembers}
	preLogos = SceneSpec{Kind: KindBanner, Name: "pre-logos", Color: "Green",
		Lines: []string{"We can't say thanks enough to", "the companies that help make", "Holiday Lights possible . . ."}}
	logos = SceneSpec{Kind: KindImage, Name: "logos", PeriodMs: 36000, PerItemMs: 3000,
		Images: []string{
			"Foley Logo 36x168.gif",
			"Enerfab Logo 36x168.gif",
			"Equipment Share Logo V1 (168x36).png",
			"Jolt Lighting Logo 36x106.gif",
			"Pretech Logo 36x168.gif",
			"KJO Logo (Dithered).png",
		}}
)

// DefaultShows are the shows the grid has run in past seasons.
func DefaultShows() map[string][]SceneSpec {
	return map[string][]SceneSpec{
		"Holiday": {
			welcome,
			{Kind: KindBanner, Name: "instructions", Color: "Green",
				Lines: []string{"Tune to 90.5 FM", "to hear the music.", "Please turn off your headlights."}},
			{Kind: KindBanner, Name: "instructions-2", Color: "Red",
				Lines: []string{"Visit farmsteadlights.com", "to send suggestions to the elves", "and see the song list."}},
			{Kind: KindBanner, Name: "lanes", Color: "Pink",
				Lines: []string{"Please do not block", "the lanes on the sides", "of the lot."}},
			{Kind: KindScroll, Name: "facebook", Color: "Green", PeriodMs: 18000,
				Header: "Visit us on Facebook", Text: "HolidayLightsAtDeannaRoseFarmstead"},
			{Kind: KindBanner, Name: "instagram", Color: "Dark Red", PeriodMs: 9000,
				Lines: []string{"Visit us on Instagram", "HolidayLightsAtDeannaRose"}},
			{Kind: KindBanner, Name: "hashtag", Color: "Green", PeriodMs: 6000,
				Lines: []string{"#farmsteadlights", "Post photos & selfies"}},
			{Kind: KindBanner, Name: "thanks-mark", Color: "Pink",
				Lines: []string{"Thanks to Mark Callegari,", "The Creator of", "Holiday Lights at Deanna Rose"}},
			{Kind: KindBanner, Name: "headlights", Color: "Orange",
				Lines: []string{"Please turn your", "headlights off"}},
			{Kind: KindQR, Name: "visit", Color: "White", Content: "https://farmsteadlights.com",
				Lines: []string{"Send a message", "to the elves"}},
			{Kind: KindMessages, Name: "messages", PerItemMs: 8000, PeriodMs: 60000,
				Samples: []Sample{
					{Recipient: "Everyone", Message: "Happy Holidays", Sender: "Team Holiday Lights", Color: "Teal"},
					{Recipient: "Santa", Message: "Merry Christmas", Sender: "Buddy", Color: "Red"},
				}},
			holidayImages,
			train,
			thankYou,
			preLogos,
			logos,
			{Kind: KindScroll, Name: "donations", Color: "Dark Red", PeriodMs: 5500,
				Header: "Happy Holidays!", Text: "We do not request or accept donations during the show."},
			goChiefs,
		},
		"PreSeason": {
			welcome,
			{Kind: KindScroll, Name: "pre-season", Color: "Green", PeriodMs: 20000, Header: "Happy Holidays!",
				Text: "The Holiday Lights show begins Thanksgiving evening.  " +
					"The elves are working hard to get the show ready.  Please come back to see the show."},
			holidayImages,
			train,
			thankYou,
			preLogos,
			logos,
			goChiefs,
		},
		"NOLF": {
			{Kind: KindBanner, Name: "nolf-welcome", Color: "Purple", PeriodMs: 3000,
				Lines: []string{"Welcome to", "Deanna Rose", "Children's Farmstead"}},
			{Kind: KindScroll, Name: "nolf", Color: "Orange", Header: "Night of the Living Farm",
				Text: "Friday and Saturday Nights - 5:30PM to 9:00PM - Purchase tickets online at drfarmstead.org"},
			{Kind: KindImage, Name: "nolf-images", PeriodMs: 10000, PerItemMs: 9000,
				Images: []string{"ghost.png", "pumpkin.png", "woodstock 38x38.png", "snowman.png", "snowflake.png"}},
			goChiefs,
		},
		"Valentine": {
			{Kind: KindScroll, Name: "valentine", Color: "#ffc8c8",
				Text: "Happy Valentine's Day!    Visit farmsteadlights.com to display your Valentine."},
			{Kind: KindMessages, Name: "valentines",
				Samples: []Sample{
					{Recipient: "Rachel", Message: "Will you be my Valentine?", Sender: "Chris", Color: "Pink"},
					{Recipient: "Sheldon", Message: "I love you", Sender: "Amy", Color: "Red"},
					{Recipient: "Everyone", Message: "Live Long and Prosper", Sender: "Spock", Color: "Lime"},
				}},
		},
		"EOS": {
			{Kind: KindScroll, Name: "end-of-season", Color: "White", Header: "Thanks for visiting!",
				Text: "The Holiday Lights show has ended. See you next year."},
			goChiefs,
		},
		"fontTest": {
			{Kind: KindScroll, Name: "font-test", Color: "Dark Red", Header: "abcdefghijklmnopqrstuvwxyz",
				Text: "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789\"'`^@#$%^&*=+-~_()[]{}<>|\\/.,;:?!"},
		},
		"Calibration": {
			{Kind: KindSweep, Name: "sweep"},
		},
	}
}
