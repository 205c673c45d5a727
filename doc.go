// Package serial provides the byte channel used by serterm: a Linux serial
// port opened raw and non-blocking, so a single loop can poll it alongside
// the local keyboard without ever stalling on a read.
//
// # Basic Usage
//
// Open a serial port with the default configuration (9600 8N1):
//
//	port, err := serial.Open("/dev/tnt0")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer port.Close()
//
//	n, err := port.Write([]byte("Hello\r\n"))
//	buffer := make([]byte, 256)
//	n, err = port.Read(buffer) // 0, nil when nothing is pending
//
// # Configuration Options
//
// Use functional options for custom configuration:
//
//	port, err := serial.Open("/dev/ttyUSB0",
//	    serial.WithBaudRate(115200),
//	    serial.WithParity(serial.ParityEven),
//	    serial.WithWriteTimeout(500*time.Millisecond),
//	)
//
// # Readiness
//
// Read never blocks. Callers that want to sleep until data arrives poll the
// descriptor returned by Fd, for example with unix.Poll.
//
// # Port Discovery
//
//	ports, err := serial.ListPorts()
//	for _, portPath := range ports {
//	    info, _ := serial.GetPortInfo(portPath)
//	    fmt.Printf("%s: %s\n", info.Path, info.Description)
//	}
//
// tty0tty null-modem pairs (/dev/tntN) are listed alongside hardware ports;
// they are how the host talks to an emulated machine's modem port.
//
// # Error Handling
//
// Failures opening a device are reported as *ConnectionError, which matches
// the sentinel describing the cause:
//
//	if errors.Is(err, serial.ErrPermissionDenied) {
//	    // chmod the device node or join the dialout group
//	}
//
// Close is idempotent. Reads and writes after Close fail with ErrPortClosed.
package serial
