package main

import (
	"bufio"
	"flag"
	"fmt"
	"image"
	"log"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"GraffitiWall/internal/config"
	"GraffitiWall/internal/export"
	"GraffitiWall/internal/net"
	"GraffitiWall/internal/state"
)

type cliOpts struct {
	host     bool
	join     string
	offline  bool
	discover bool
	config   string
	port     int
}

func parseCLIOpts() cliOpts {
	var opt cliOpts
	flag.BoolVar(&opt.host, "host", false, "Host a wall and accept painters from the LAN")
	flag.StringVar(&opt.join, "join", "", "Join a hosted wall at host:port")
	flag.BoolVar(&opt.offline, "offline", false, "Paint on a local wall without any networking")
	flag.BoolVar(&opt.discover, "discover", false, "Find a hosted wall via mDNS and join it")
	flag.StringVar(&opt.config, "config", "", "Path to the TOML config file")
	flag.IntVar(&opt.port, "port", 0, "Override the listen port from the config")
	flag.Parse()
	return opt
}

func main() {
	opt := parseCLIOpts()

	conf, err := config.Load(opt.config)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if opt.port > 0 {
		conf.Port = opt.port
	}

	switch {
	case opt.offline:
		runOffline(conf)
	case opt.host:
		runHost(conf)
	case opt.join != "" || opt.discover:
		runClient(conf, opt.join)
	default:
		runHost(conf)
	}
}

func wallOptions(conf config.Config) state.Options {
	return state.Options{
		Width:     conf.Width,
		Height:    conf.Height,
		Base:      conf.Base(),
		ChunkSize: conf.ChunkSize,
	}
}

func runHost(conf config.Config) {
	log.Println("Starting as HOST")
	hub := net.NewHub()
	wall := state.NewWall(wallOptions(conf), hub)
	hub.OnMessage(wall.HandleIncoming)
	hub.OnJoin(wall.PeerJoined)

	go func() {
		if err := hub.ListenAndServe(fmt.Sprintf(":%d", conf.Port)); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	srv, err := net.Advertise(conf.Port)
	if err != nil {
		log.Printf("[HOST] mDNS advertise failed, painters must join by address: %v", err)
	} else {
		defer srv.Shutdown()
	}

	wall.NetworkReady()
	fmt.Printf("Hosting wall on %s:%d\n", net.OutgoingIP(), conf.Port)
	repl(wall, hub, conf)
}

func runClient(conf config.Config, addr string) {
	log.Println("Starting as CLIENT")
	if addr == "" {
		found, err := net.FindHost()
		if err != nil {
			log.Fatalf("Discovery failed: %v", err)
		}
		addr = found
	}

	client, err := net.Dial(addr)
	if err != nil {
		log.Fatalf("Failed to connect to %s: %v", addr, err)
	}
	defer client.Close()

	wall := state.NewWall(wallOptions(conf), client)
	client.OnMessage(wall.HandleIncoming)
	go func() {
		client.Listen()
		log.Println("Disconnected from host")
		os.Exit(0)
	}()

	wall.NetworkReady()
	fmt.Printf("Joined wall at %s\n", addr)
	repl(wall, client, conf)
}

func runOffline(conf config.Config) {
	log.Println("Starting OFFLINE")
	wall := state.NewWall(wallOptions(conf), nil)
	wall.Activate()
	repl(wall, nil, conf)
}

func repl(wall *state.Wall, nc state.NetworkContext, conf config.Config) {
	fmt.Println("Type 'help' for commands.")
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			fmt.Print("> ")
			continue
		}
		cmd, args := fields[0], fields[1:]

		switch cmd {
		case "paint":
			cmdPaint(wall, conf, args)
		case "spray":
			cmdSpray(wall, conf, args)
		case "clear":
			wall.ClearCanvas()
			fmt.Println("cleared")
		case "save":
			cmdExport(wall, args, "save path.{png|jpg|bmp}", export.SaveImage)
		case "pdf":
			cmdExport(wall, args, "pdf path.pdf", export.SavePDF)
		case "thumb":
			cmdThumb(wall, args)
		case "peers":
			cmdPeers(nc)
		case "help":
			printHelp()
		case "quit", "exit":
			return
		default:
			fmt.Printf("unknown command %q, type 'help'\n", cmd)
		}
		fmt.Print("> ")
	}
}

func cmdPaint(wall *state.Wall, conf config.Config, args []string) {
	u, v, ok := parseUV(args)
	if !ok {
		fmt.Println("usage: paint u v [#rrggbb] [radius]")
		return
	}
	col := conf.Brush()
	radius := conf.BrushRadius
	if len(args) >= 3 {
		col = config.ParseHexColor(args[2])
	}
	if len(args) >= 4 {
		if r, err := strconv.Atoi(args[3]); err == nil && r >= 0 {
			radius = r
		}
	}
	wall.Paint(u, v, col, radius)
}

// cmdSpray scatters small stamps around the target point, a rough
// stand-in for holding the can at a distance.
func cmdSpray(wall *state.Wall, conf config.Config, args []string) {
	u, v, ok := parseUV(args)
	if !ok {
		fmt.Println("usage: spray u v [count] [#rrggbb]")
		return
	}
	count := 20
	if len(args) >= 3 {
		if n, err := strconv.Atoi(args[2]); err == nil && n > 0 {
			count = n
		}
	}
	col := conf.Brush()
	if len(args) >= 4 {
		col = config.ParseHexColor(args[3])
	}
	for i := 0; i < count; i++ {
		ju := u + (rand.Float64()-0.5)*0.04
		jv := v + (rand.Float64()-0.5)*0.04
		wall.Paint(ju, jv, col, 1+rand.Intn(2))
	}
}

func cmdExport(wall *state.Wall, args []string, usage string, write func(string, image.Image) error) {
	if len(args) < 1 {
		fmt.Println("usage:", usage)
		return
	}
	snap := wall.Snapshot()
	if snap == nil {
		fmt.Println("canvas is not initialized yet")
		return
	}
	if err := write(args[0], snap); err != nil {
		fmt.Printf("export failed: %v\n", err)
		return
	}
	fmt.Println("wrote", args[0])
}

func cmdThumb(wall *state.Wall, args []string) {
	if len(args) < 1 {
		fmt.Println("usage: thumb path.png [width]")
		return
	}
	width := 128
	if len(args) >= 2 {
		if w, err := strconv.Atoi(args[1]); err == nil {
			width = w
		}
	}
	snap := wall.Snapshot()
	if snap == nil {
		fmt.Println("canvas is not initialized yet")
		return
	}
	if err := export.Thumbnail(args[0], snap, width); err != nil {
		fmt.Printf("thumbnail failed: %v\n", err)
		return
	}
	fmt.Println("wrote", args[0])
}

func cmdPeers(nc state.NetworkContext) {
	if nc == nil {
		fmt.Println("offline, no peers")
		return
	}
	peers := nc.PeerIDs()
	fmt.Printf("%d peer(s) connected\n", len(peers))
	for _, id := range peers {
		fmt.Println("  ", id)
	}
}

func parseUV(args []string) (float64, float64, bool) {
	if len(args) < 2 {
		return 0, 0, false
	}
	u, err1 := strconv.ParseFloat(args[0], 64)
	v, err2 := strconv.ParseFloat(args[1], 64)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return u, v, true
}

func printHelp() {
	fmt.Println(`Commands:
  paint u v [#rrggbb] [radius]   stamp the brush at (u, v) in [0, 1]
  spray u v [count] [#rrggbb]    scatter small stamps around (u, v)
  clear                          wipe the wall back to its base color
  save path.{png|jpg|bmp}        export the wall as an image
  pdf path.pdf                   export the wall as an A4 PDF
  thumb path.png [width]         export a scaled-down preview
  peers                          list connected painters
  quit                           leave`)
}
