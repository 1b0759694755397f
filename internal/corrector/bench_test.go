package corrector

import (
	"context"
	"testing"
)

func BenchmarkCorrectUnchanged(b *testing.B) {
	c := New()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Correct("docker ps -a")
	}
}

func BenchmarkCorrectTypos(b *testing.B) {
	c := New()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Correct("dcoker imgaes --filter dangling=true")
	}
}

func BenchmarkCorrectComplex(b *testing.B) {
	c := New()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Correct(`docekr rnu --name myapp -p 8080:80 -v /data:/app/data nginx:latest && docker ps | grep myapp`)
	}
}

func BenchmarkCorrectAll(b *testing.B) {
	c := New()
	lines := []string{"dcoker ps", "docker pul nginx", "docker imgaes", "dokcer rmi -f old", "docker stats"}
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := c.CorrectAll(ctx, lines, 4); err != nil {
			b.Fatal(err)
		}
	}
}
