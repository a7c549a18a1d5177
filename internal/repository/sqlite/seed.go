package sqlite

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/sakif/psst/internal/auth"
	"github.com/sakif/psst/internal/model"
)

// SampleUser is a fixture account together with its plaintext password.
type SampleUser struct {
	Password string
	Nick     string
	Avatar   string
}

// SampleUsers are the accounts created by SampleData.
// Robots lovingly delivered by Robohash.org.
var SampleUsers = []SampleUser{
	{"bob", "Bobalooba", "http://robohash.org/bob"},
	{"jim", "Jimbulator", "http://robohash.org/jim"},
	{"mary", "Contrary", "http://robohash.org/mary"},
	{"jb", "Bean", "http://robohash.org/jb"},
	{"mandible", "Mandible", "http://robohash.org/mandible"},
	{"bar", "Barfoo", "http://robohash.org/bar"},
}

// FixedPosts is the deterministic post set loaded by SampleData(ctx, false),
// listed newest-first.
var FixedPosts = []model.Post{
	fixedPost(1, "2015-02-20 01:45:06", "Mandible", "wkwaai yiynhmg rdcxnwuhy yxxzlieaxe yu waez efh odiipzqep cp qsaqp gkhhyxkb raguklag #ox qbml nuhb #mtzw yctpzdx uxxqibyw zhysw ugidbqii"),
	fixedPost(2, "2015-02-20 00:54:53", "Barfoo", "edukmb zankyyu panhipscgo zkvoyg gaaeuogdzn lhpiemoaui ave aruckns conk we @Contrary nlyixitpd fianqsj #ync iou yoeifeodjo  sxxms umpcvu"),
	fixedPost(3, "2015-02-20 00:04:40", "Jimbulator", "#sre ydpwg kau elepeeu dukouvya #ax jji #cvrwu yccq mxbdehwyna hyhhj oqyiibzrfl nilytlwqws yppu plggqfsfyn ggf snzxlxo qdjzzg iyjc "),
	fixedPost(4, "2015-02-19 23:14:27", "Contrary", "#cfsidisk xvucuio ww yqoowit cjshcohaad euau vbzylol acpxixpsh qay @Bobalooba okl #gjyep"),
	fixedPost(5, "2015-02-19 22:24:14", "Mandible", "mhdckmcys tdwioaxxa bviwczux wuhbalaa yiul xm cvauk stouea eexmahg vi uwy iy qp cifog eizjzmsaae eiixs aam #gye @Contrary zt "),
	fixedPost(6, "2015-02-19 21:34:01", "Mandible", "eywam ooh ftmjr #swgsdd sp @Jimbulator frfikgij nquuz ovuezj edlxcejw"),
	fixedPost(7, "2015-02-19 20:43:48", "Bobalooba", "uoro hgjkpzdyyx jsjtl tbnia egoetouzda vayiftdnlh tnh cpzd #rucaecv olkao osit bdqi vry oiweusczq wepf lptp gud pooezehvqu  oaywaeu "),
	fixedPost(8, "2015-02-19 19:53:35", "Contrary", "qhopqrquy ayiwktwn uluefr oei savjdu #nrurcdrbq vuzdoaco trzbuj zpjetma xdjeooprhe fsvt rnx #gquax ctizac ssun nfdtiz #zocpybi @Bean"),
	fixedPost(9, "2015-02-19 19:03:22", "Barfoo", "nx tdeekuyt inyevkn mravuos dwkbtp aaolctomnj ecleerbm raynuui exiymoz lyeywzt cnzyykgfkg jn ievbfe zfpaxga  guapoe @Jimbulator "),
	fixedPost(10, "2015-02-19 18:13:09", "Jimbulator", "ieqm yaa ar cwynuy efil ewelkagj ujasyn nwyenbd ziirqnwek oycu eghrbew ybjyp ew na focbq jxfqarocy jsaa  tt atoitu ojnpswqk"),
}

func fixedPost(id int64, stamp, nick, content string) model.Post {
	ts, err := time.Parse(model.TimestampLayout, stamp)
	if err != nil {
		panic(fmt.Sprintf("sqlite: bad fixture timestamp %q: %v", stamp, err))
	}
	return model.Post{ID: id, Timestamp: ts, Nick: nick, Content: content}
}

// SampleData replaces all rows with the sample users (each following
// themselves) and either FixedPosts or 100 randomly generated posts.
func (db *DB) SampleData(ctx context.Context, random bool) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning sample tx: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"sessions", "votes", "follows", "posts", "users"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("sqlite: clearing %s: %w", table, err)
		}
	}

	for _, u := range SampleUsers {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO users (nick, password, avatar) VALUES (?, ?, ?)`,
			u.Nick, auth.HashPassword(u.Password), u.Avatar,
		); err != nil {
			return fmt.Errorf("sqlite: inserting sample user %s: %w", u.Nick, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO follows (followed, follower) VALUES (?, ?)`,
			u.Nick, u.Nick,
		); err != nil {
			return fmt.Errorf("sqlite: inserting self-follow for %s: %w", u.Nick, err)
		}
	}

	if random {
		// Posts step back in time from now, 3013 seconds apart.
		now := time.Now()
		for i := range 100 {
			author := SampleUsers[rand.IntN(len(SampleUsers))]
			at := now.Add(-time.Duration(i*3013) * time.Second)
			if _, err := db.insertPost(ctx, tx, author.Nick, sampleText(author.Nick), at); err != nil {
				return err
			}
		}
	} else {
		for _, p := range FixedPosts {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO posts (id, timestamp, usernick, content) VALUES (?, ?, ?, ?)`,
				p.ID, p.Stamp(), p.Nick, p.Content,
			); err != nil {
				return fmt.Errorf("sqlite: inserting sample post %d: %w", p.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing sample data: %w", err)
	}
	return nil
}

// Vowels appear twice so they are twice as likely as consonants.
const sampleLetters = "aeiouybcdfghjklmnpqrstvwxzaeiouy"

// sampleText builds a random post of nonsense words that starts with the
// author's nick, contains the odd #tag, and mentions one other sample user.
// The result always fits in a post.
func sampleText(author string) string {
	var mentions []string
	for _, u := range SampleUsers {
		if u.Nick != author {
			mentions = append(mentions, "@"+u.Nick)
		}
	}
	mention := mentions[rand.IntN(len(mentions))]

	words := []string{author}
	length := len(author) + 1 + len(mention)
	for range 5 + rand.IntN(46) {
		var w strings.Builder
		if rand.IntN(101) > 90 {
			w.WriteByte('#')
		}
		for range 2 + rand.IntN(9) {
			w.WriteByte(sampleLetters[rand.IntN(len(sampleLetters))])
		}
		if length+1+w.Len() > 140 {
			break
		}
		words = append(words, w.String())
		length += 1 + w.Len()
	}

	at := rand.IntN(len(words) + 1)
	words = append(words[:at], append([]string{mention}, words[at:]...)...)
	return strings.Join(words, " ")
}
