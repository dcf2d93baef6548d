package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/kilianp07/evopool/infra/mqtt"
)

func startMosquitto(ctx context.Context, t *testing.T) (tc.Container, string) {
	t.Helper()
	conf := `listener 1883
allow_anonymous true
persistence false
log_dest stdout
`
	path := filepath.Join(t.TempDir(), "mosquitto.conf")
	if err := os.WriteFile(path, []byte(conf), 0644); err != nil {
		t.Fatalf("write conf: %v", err)
	}
	req := tc.ContainerRequest{
		Image:        "eclipse-mosquitto:2.0",
		ExposedPorts: []string{"1883/tcp"},
		WaitingFor:   wait.ForListeningPort("1883/tcp"),
		Files: []tc.ContainerFile{{
			HostFilePath:      path,
			ContainerFilePath: "/mosquitto/config/mosquitto.conf",
			FileMode:          0644,
		}},
	}
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Skipf("unable to start mosquitto: %v", err)
	}
	host, err := cont.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := cont.MappedPort(ctx, "1883")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	return cont, fmt.Sprintf("tcp://%s:%s", host, port.Port())
}

func TestMQTTSinkWithMosquitto(t *testing.T) {
	if testing.Short() {
		t.Skip("short mode")
	}
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("docker not installed")
	}
	ctx := context.Background()
	cont, broker := startMosquitto(ctx, t)
	defer func() { _ = cont.Terminate(ctx) }()

	received := make(chan []byte, 1)
	sub := paho.NewClient(paho.NewClientOptions().AddBroker(broker).SetClientID("report-sub"))
	var connErr error
	for i := 0; i < 5; i++ {
		token := sub.Connect()
		token.Wait()
		if connErr = token.Error(); connErr == nil {
			break
		}
		time.Sleep(time.Duration(i+1) * 100 * time.Millisecond)
	}
	if connErr != nil {
		t.Skipf("mosquitto not ready: %v", connErr)
	}
	defer sub.Disconnect(100)
	if token := sub.Subscribe("evopool/test", 1, func(_ paho.Client, m paho.Message) {
		select {
		case received <- m.Payload():
		default:
		}
	}); token.Wait() && token.Error() != nil {
		t.Fatalf("subscribe: %v", token.Error())
	}

	pub, err := mqtt.NewPublisher(mqtt.Config{Broker: broker, Topic: "evopool/test", QoS: 1})
	if err != nil {
		t.Fatalf("publisher: %v", err)
	}
	sink := NewMQTTSink(pub, "it")
	defer sink.Close()

	if err := sink.Report(ctx, []string{" ****** Running generation 0 ****** "}, ""); err != nil {
		t.Fatalf("report: %v", err)
	}
	select {
	case payload := <-received:
		var r Report
		if err := json.Unmarshal(payload, &r); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if r.RunID != "it" || len(r.Lines) != 1 {
			t.Fatalf("unexpected report %+v", r)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("report not received")
	}
}
