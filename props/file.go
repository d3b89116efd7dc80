package props

import "github.com/cpmech/gosl/utl"

func readFile(path string) ([]byte, error) {
	return utl.ReadFile(path)
}

func writeFile(path string, data []byte) error {
	utl.WriteFileS(path, string(data))
	return nil
}
