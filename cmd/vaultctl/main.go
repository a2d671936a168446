package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"

	"vault-engine/internal/crypto"
	"vault-engine/internal/health"
	"vault-engine/internal/password"
	"vault-engine/internal/platform"
	"vault-engine/internal/search"
	"vault-engine/internal/secmem"
	"vault-engine/internal/store"
	"vault-engine/internal/totp"
	"vault-engine/internal/vault"
)

const headerVersion = 1

// header is the on-disk unlock material: derivation salt plus a sealed
// constant used to verify the derived key before touching any item.
type header struct {
	Version int    `json:"version"`
	Salt    []byte `json:"salt"`
	Check   struct {
		Nonce      []byte `json:"nonce"`
		Ciphertext []byte `json:"ciphertext"`
		Tag        []byte `json:"tag"`
	} `json:"check"`
}

var checkPlaintext = []byte("vault-keycheck")
var checkAAD = []byte("keycheck")

func main() {
	if err := platform.DisableCoreDumps(); err != nil {
		fmt.Fprintln(os.Stderr, "warning: could not disable core dumps:", err)
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.WarnLevel).With().Timestamp().Logger()

	initCmd := flag.NewFlagSet("init", flag.ExitOnError)
	initDir := initCmd.String("vault", "./vault", "vault directory")

	addCmd := flag.NewFlagSet("add", flag.ExitOnError)
	addDir := addCmd.String("vault", "./vault", "vault directory")
	addKind := addCmd.String("kind", "login", "record kind: login|note|apikey")
	addName := addCmd.String("name", "", "record name")
	addSite := addCmd.String("site", "", "site (login)")
	addUser := addCmd.String("user", "", "username (login)")
	addPass := addCmd.String("pass", "", "password, or gen:N to generate N chars")
	addText := addCmd.String("text", "", "note text")
	addTags := addCmd.String("tags", "", "comma-separated tags")

	getCmd := flag.NewFlagSet("get", flag.ExitOnError)
	getDir := getCmd.String("vault", "./vault", "vault directory")
	getID := getCmd.String("id", "", "item id")

	listCmd := flag.NewFlagSet("list", flag.ExitOnError)
	listDir := listCmd.String("vault", "./vault", "vault directory")
	listQuery := listCmd.String("q", "", "search query over metadata")

	delCmd := flag.NewFlagSet("delete", flag.ExitOnError)
	delDir := delCmd.String("vault", "./vault", "vault directory")
	delID := delCmd.String("id", "", "item id")

	rekeyCmd := flag.NewFlagSet("rekey", flag.ExitOnError)
	rekeyDir := rekeyCmd.String("vault", "./vault", "vault directory")

	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	exportDir := exportCmd.String("vault", "./vault", "vault directory")
	exportOut := exportCmd.String("out", "vault-export.json", "output file")

	importCmd := flag.NewFlagSet("import", flag.ExitOnError)
	importDir := importCmd.String("vault", "./vault", "vault directory")
	importIn := importCmd.String("in", "vault-export.json", "input file")

	healthCmd := flag.NewFlagSet("health", flag.ExitOnError)
	healthDir := healthCmd.String("vault", "./vault", "vault directory")

	genCmd := flag.NewFlagSet("gen", flag.ExitOnError)
	genLength := genCmd.Int("length", 20, "password length")
	genNoSymbols := genCmd.Bool("no-symbols", false, "exclude symbols")
	genNoAmbiguous := genCmd.Bool("no-ambiguous", false, "exclude ambiguous characters")

	phraseCmd := flag.NewFlagSet("passphrase", flag.ExitOnError)
	phraseWords := phraseCmd.Int("words", 6, "word count")
	phraseSep := phraseCmd.String("sep", "-", "separator")
	phraseCaps := phraseCmd.Bool("caps", false, "capitalize each word")

	strengthCmd := flag.NewFlagSet("strength", flag.ExitOnError)

	totpCmd := flag.NewFlagSet("totp", flag.ExitOnError)
	totpSecret := totpCmd.String("secret", "", "base32 secret (empty generates one)")
	totpIssuer := totpCmd.String("issuer", "", "issuer for provisioning URI")
	totpAccount := totpCmd.String("account", "", "account for provisioning URI")

	codesCmd := flag.NewFlagSet("backup-codes", flag.ExitOnError)
	codesCount := codesCmd.Int("count", 10, "number of codes")

	if len(os.Args) < 2 {
		usage()
		return
	}

	ctx := context.Background()
	switch os.Args[1] {
	case "init":
		_ = initCmd.Parse(os.Args[2:])
		dieIf(cmdInit(*initDir))
	case "add":
		_ = addCmd.Parse(os.Args[2:])
		dieIf(cmdAdd(ctx, logger, *addDir, *addKind, *addName, *addSite, *addUser, *addPass, *addText, *addTags))
	case "get":
		_ = getCmd.Parse(os.Args[2:])
		dieIf(cmdGet(ctx, logger, *getDir, *getID))
	case "list":
		_ = listCmd.Parse(os.Args[2:])
		dieIf(cmdList(ctx, logger, *listDir, *listQuery))
	case "delete":
		_ = delCmd.Parse(os.Args[2:])
		fs, err := store.NewFileStore(itemsDir(*delDir))
		dieIf(err)
		dieIf(fs.Delete(ctx, *delID))
	case "rekey":
		_ = rekeyCmd.Parse(os.Args[2:])
		dieIf(cmdRekey(ctx, logger, *rekeyDir))
	case "export":
		_ = exportCmd.Parse(os.Args[2:])
		dieIf(cmdExport(ctx, logger, *exportDir, *exportOut))
	case "import":
		_ = importCmd.Parse(os.Args[2:])
		dieIf(cmdImport(ctx, logger, *importDir, *importIn))
	case "health":
		_ = healthCmd.Parse(os.Args[2:])
		dieIf(cmdHealth(ctx, logger, *healthDir))
	case "gen":
		_ = genCmd.Parse(os.Args[2:])
		pw, err := password.Generate(password.Options{
			Length:           *genLength,
			Uppercase:        true,
			Lowercase:        true,
			Digits:           true,
			Symbols:          !*genNoSymbols,
			ExcludeAmbiguous: *genNoAmbiguous,
		})
		dieIf(err)
		fmt.Println(pw)
	case "passphrase":
		_ = phraseCmd.Parse(os.Args[2:])
		p, err := password.GeneratePassphrase(*phraseWords, *phraseSep, *phraseCaps)
		dieIf(err)
		fmt.Println(p)
	case "strength":
		_ = strengthCmd.Parse(os.Args[2:])
		dieIf(cmdStrength(strengthCmd.Args()))
	case "totp":
		_ = totpCmd.Parse(os.Args[2:])
		dieIf(cmdTOTP(*totpSecret, *totpIssuer, *totpAccount))
	case "backup-codes":
		_ = codesCmd.Parse(os.Args[2:])
		codes, err := totp.BackupCodes(*codesCount)
		dieIf(err)
		for _, c := range codes {
			fmt.Println(c)
		}
	default:
		usage()
	}
}

func usage() {
	fmt.Print(`vaultctl commands:

  init         --vault dir
  add          --vault dir --kind login --name gmail --site mail.google.com --user alice --pass gen:20 [--tags a,b]
  get          --vault dir --id <ITEM_ID>
  list         --vault dir [--q query]
  delete       --vault dir --id <ITEM_ID>
  rekey        --vault dir
  export       --vault dir --out vault-export.json
  import       --vault dir --in vault-export.json
  health       --vault dir
  gen          [--length 20] [--no-symbols] [--no-ambiguous]
  passphrase   [--words 6] [--sep -] [--caps]
  strength     <password>
  totp         [--secret BASE32] [--issuer X --account Y]
  backup-codes [--count 10]
`)
}

func dieIf(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func itemsDir(dir string) string { return filepath.Join(dir, "items") }
func headerPath(dir string) string { return filepath.Join(dir, "vault.json") }

func promptSecret(label string) (string, error) {
	fmt.Fprintf(os.Stderr, "%s: ", label)
	if term.IsTerminal(int(os.Stdin.Fd())) {
		b, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		return string(b), err
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func writeHeader(dir string, h header) error {
	b, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(headerPath(dir), b, 0600)
}

func readHeader(dir string) (header, error) {
	var h header
	b, err := os.ReadFile(headerPath(dir))
	if err != nil {
		return h, err
	}
	if err := json.Unmarshal(b, &h); err != nil {
		return h, err
	}
	if h.Version != headerVersion {
		return h, fmt.Errorf("unsupported vault version %d", h.Version)
	}
	return h, nil
}

func sealCheck(h *header, rootKey *secmem.SecretBuffer) error {
	kb, err := rootKey.Bytes()
	if err != nil {
		return err
	}
	env, err := crypto.Seal(kb, checkPlaintext, checkAAD)
	if err != nil {
		return err
	}
	h.Check.Nonce, h.Check.Ciphertext, h.Check.Tag = env.Nonce, env.Ciphertext, env.Tag
	return nil
}

func cmdInit(dir string) error {
	if _, err := os.Stat(headerPath(dir)); err == nil {
		return fmt.Errorf("vault already exists at %s", dir)
	}
	secret, err := promptSecret("new master secret")
	if err != nil {
		return err
	}
	if a := password.Analyze(secret, nil); !a.MeetsMinimumPolicy {
		return fmt.Errorf("master secret rejected: %s", strings.Join(a.Violations, "; "))
	}
	salt, err := crypto.GenerateSalt()
	if err != nil {
		return err
	}
	pair, err := crypto.DeriveRootKeys(secret, salt)
	if err != nil {
		return err
	}
	defer pair.Wipe()

	if err := os.MkdirAll(itemsDir(dir), 0700); err != nil {
		return err
	}
	h := header{Version: headerVersion, Salt: salt}
	if err := sealCheck(&h, pair.EncryptionKey); err != nil {
		return err
	}
	if err := writeHeader(dir, h); err != nil {
		return err
	}
	fmt.Println("vault initialized at", dir)
	return nil
}

// unlock derives the root key pair from the stored salt and verifies it
// against the sealed check value before handing back a live service.
func unlock(logger zerolog.Logger, dir string) (*vault.Service, error) {
	h, err := readHeader(dir)
	if err != nil {
		return nil, err
	}
	secret, err := promptSecret("master secret")
	if err != nil {
		return nil, err
	}
	pair, err := crypto.DeriveRootKeys(secret, h.Salt)
	if err != nil {
		return nil, err
	}
	// the auth half goes to the authentication collaborator; none here
	pair.AuthKey.Wipe()

	kb, err := pair.EncryptionKey.Bytes()
	if err != nil {
		return nil, err
	}
	env := &crypto.Envelope{Nonce: h.Check.Nonce, Ciphertext: h.Check.Ciphertext, Tag: h.Check.Tag}
	if _, err := crypto.Open(env, kb, checkAAD); err != nil {
		pair.Wipe()
		return nil, errors.New("unable to unlock vault")
	}
	return vault.NewService(pair.EncryptionKey, logger), nil
}

func resolvePassword(arg string) (string, error) {
	if n, ok := strings.CutPrefix(arg, "gen:"); ok {
		length := 0
		if _, err := fmt.Sscanf(n, "%d", &length); err != nil {
			return "", fmt.Errorf("bad password argument %q", arg)
		}
		return password.Generate(password.Options{
			Length: length, Uppercase: true, Lowercase: true, Digits: true, Symbols: true,
		})
	}
	return arg, nil
}

func cmdAdd(ctx context.Context, logger zerolog.Logger, dir, kind, name, site, user, pass, text, tags string) error {
	svc, err := unlock(logger, dir)
	if err != nil {
		return err
	}
	defer svc.Release()

	var rec *vault.Record
	switch vault.Kind(kind) {
	case vault.KindLogin:
		pw, err := resolvePassword(pass)
		if err != nil {
			return err
		}
		rec = vault.NewRecord(vault.KindLogin, "", name)
		rec.Login = &vault.LoginData{Site: site, Username: user, Password: pw}
	case vault.KindNote:
		rec = vault.NewRecord(vault.KindNote, "", name)
		rec.Note = &vault.NoteData{Text: text}
	case vault.KindAPIKey:
		rec = vault.NewRecord(vault.KindAPIKey, "", name)
		rec.APIKey = &vault.APIKeyData{Service: site, Secret: pass}
	default:
		return fmt.Errorf("unsupported kind %q", kind)
	}
	if tags != "" {
		rec.Tags = strings.Split(tags, ",")
	}

	item, err := svc.EncryptItem(rec)
	if err != nil {
		return err
	}
	fs, err := store.NewFileStore(itemsDir(dir))
	if err != nil {
		return err
	}
	if err := fs.Put(ctx, item); err != nil {
		return err
	}
	fmt.Println(item.ID)
	return nil
}

func cmdGet(ctx context.Context, logger zerolog.Logger, dir, id string) error {
	svc, err := unlock(logger, dir)
	if err != nil {
		return err
	}
	defer svc.Release()

	fs, err := store.NewFileStore(itemsDir(dir))
	if err != nil {
		return err
	}
	item, err := fs.Get(ctx, id)
	if err != nil {
		return err
	}
	rec, err := svc.DecryptItem(item)
	if err != nil {
		return errors.New("unable to unlock this item")
	}
	out, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func cmdList(ctx context.Context, logger zerolog.Logger, dir, query string) error {
	svc, err := unlock(logger, dir)
	if err != nil {
		return err
	}
	defer svc.Release()

	fs, err := store.NewFileStore(itemsDir(dir))
	if err != nil {
		return err
	}
	items, err := fs.List(ctx)
	if err != nil {
		return err
	}
	ix := search.New()
	metas := make(map[string]vault.Metadata, len(items))
	for _, item := range items {
		meta, err := svc.DecryptMetadataOnly(item)
		if err != nil {
			return errors.New("unable to unlock this item")
		}
		metas[meta.ID] = meta
		fields := []string{meta.Name, string(meta.Kind)}
		fields = append(fields, meta.Tags...)
		for _, v := range meta.Index {
			fields = append(fields, v)
		}
		ix.Add(meta.ID, fields...)
	}

	ids := make([]string, 0, len(metas))
	if query != "" {
		ids = ix.Query(query)
	} else {
		for id := range metas {
			ids = append(ids, id)
		}
	}
	for _, id := range ids {
		m := metas[id]
		fmt.Printf("%s  %-8s  %s\n", m.ID, m.Kind, m.Name)
	}
	return nil
}

func cmdRekey(ctx context.Context, logger zerolog.Logger, dir string) error {
	svc, err := unlock(logger, dir)
	if err != nil {
		return err
	}
	defer svc.Release()

	newSecret, err := promptSecret("new master secret")
	if err != nil {
		return err
	}
	if a := password.Analyze(newSecret, nil); !a.MeetsMinimumPolicy {
		return fmt.Errorf("new master secret rejected: %s", strings.Join(a.Violations, "; "))
	}
	newSalt, err := crypto.GenerateSalt()
	if err != nil {
		return err
	}
	newPair, err := crypto.DeriveRootKeys(newSecret, newSalt)
	if err != nil {
		return err
	}
	newPair.AuthKey.Wipe()

	fs, err := store.NewFileStore(itemsDir(dir))
	if err != nil {
		return err
	}
	items, err := fs.List(ctx)
	if err != nil {
		return err
	}
	rekeyed, err := svc.RekeyAll(newPair.EncryptionKey, items)
	if err != nil {
		return err
	}
	for _, item := range rekeyed {
		if err := fs.Put(ctx, item); err != nil {
			return err
		}
	}

	h := header{Version: headerVersion, Salt: newSalt}
	if err := sealCheck(&h, newPair.EncryptionKey); err != nil {
		return err
	}
	if err := writeHeader(dir, h); err != nil {
		return err
	}
	fmt.Printf("re-keyed %d items\n", len(rekeyed))
	return nil
}

func cmdExport(ctx context.Context, logger zerolog.Logger, dir, out string) error {
	svc, err := unlock(logger, dir)
	if err != nil {
		return err
	}
	defer svc.Release()

	fs, err := store.NewFileStore(itemsDir(dir))
	if err != nil {
		return err
	}
	items, err := fs.List(ctx)
	if err != nil {
		return err
	}
	blob, err := svc.ExportBundle(items)
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, blob, 0600); err != nil {
		return err
	}
	fmt.Printf("exported %d items to %s\n", len(items), out)
	return nil
}

func cmdImport(ctx context.Context, logger zerolog.Logger, dir, in string) error {
	svc, err := unlock(logger, dir)
	if err != nil {
		return err
	}
	defer svc.Release()

	blob, err := os.ReadFile(in)
	if err != nil {
		return err
	}
	items, err := svc.ImportBundle(blob)
	if err != nil {
		return err
	}
	fs, err := store.NewFileStore(itemsDir(dir))
	if err != nil {
		return err
	}
	for _, item := range items {
		if err := fs.Put(ctx, item); err != nil {
			return err
		}
	}
	fmt.Printf("imported %d items\n", len(items))
	return nil
}

func cmdHealth(ctx context.Context, logger zerolog.Logger, dir string) error {
	svc, err := unlock(logger, dir)
	if err != nil {
		return err
	}
	defer svc.Release()

	fs, err := store.NewFileStore(itemsDir(dir))
	if err != nil {
		return err
	}
	items, err := fs.List(ctx)
	if err != nil {
		return err
	}
	records, err := svc.DecryptItems(items)
	if err != nil {
		return errors.New("unable to unlock this item")
	}

	opts := health.Options{}
	rep := health.Analyze(records, opts)
	fmt.Printf("score: %d/100\n", health.Score(records, opts))
	printFindings := func(label string, ids []string) {
		if len(ids) > 0 {
			fmt.Printf("%-8s %s\n", label+":", strings.Join(ids, ", "))
		}
	}
	printFindings("weak", rep.Weak)
	printFindings("reused", rep.Reused)
	printFindings("stale", rep.Stale)
	printFindings("flagged", rep.Flagged)
	return nil
}

func cmdStrength(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: strength <password>")
	}
	a := password.Analyze(args[0], nil)
	fmt.Printf("score:   %d/4\n", a.Score)
	fmt.Printf("entropy: %.1f bits\n", a.EntropyBits)
	if a.MeetsMinimumPolicy {
		fmt.Println("policy:  ok")
	} else {
		fmt.Println("policy:  " + strings.Join(a.Violations, "; "))
	}
	return nil
}

func cmdTOTP(secret, issuer, account string) error {
	var err error
	if secret == "" {
		secret, err = totp.GenerateSecret()
		if err != nil {
			return err
		}
		fmt.Println("secret:", secret)
	}
	p := totp.Params{Secret: secret}
	code, err := totp.Generate(p, time.Now())
	if err != nil {
		return err
	}
	fmt.Println("code:  ", code)
	if issuer != "" && account != "" {
		fmt.Println("uri:   ", totp.BuildProvisioningURL(issuer, account, p))
	}
	return nil
}
